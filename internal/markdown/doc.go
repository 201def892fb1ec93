// Package markdown turns a post body into HTML.
//
// Rendering happens in two passes: math delimiters are rewritten into inert
// KaTeX placeholder spans, then goldmark renders the Markdown. Both passes
// report failure as values so a caller can fall back instead of aborting.
package markdown

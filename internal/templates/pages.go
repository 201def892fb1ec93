package templates

import (
	"path"
	"path/filepath"

	"github.com/InfTape/inftape.github.io/internal/posts"
)

// Site carries site-wide values available to every page as .Site.
type Site struct {
	Title       string
	Description string
	KatexCSS    string
	KatexJS     string
}

// Links holds relative URL prefixes so pages work from any host path.
type Links struct {
	// Root leads from the page back to the site root and ends in "/" or is empty.
	Root string
	// PostsPath is the post output directory relative to the site root.
	PostsPath string
}

// PostPage is the data for the post template.
type PostPage struct {
	Site Site
	Links
	Post *posts.Post
}

// IndexPage is the data for the index template.
type IndexPage struct {
	Site Site
	Links
	Posts []*posts.Post
	Total int
}

// ArchivePage is the data for the archive template.
type ArchivePage struct {
	Site Site
	Links
	Years []posts.YearGroup
	Total int
}

// LinksFor computes the Links for a page written into pageDir.
func LinksFor(siteRoot, postsDir, pageDir string) Links {
	return Links{
		Root:      relPrefix(pageDir, siteRoot),
		PostsPath: relSlash(siteRoot, postsDir),
	}
}

func relSlash(from, to string) string {
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return filepath.ToSlash(to)
	}
	return path.Clean(filepath.ToSlash(rel))
}

func relPrefix(from, to string) string {
	rel := relSlash(from, to)
	if rel == "." {
		return ""
	}
	return rel + "/"
}

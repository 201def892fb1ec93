package config

import "time"

// Defaults for unset fields.
const (
	DefaultSiteRoot     = "."
	DefaultSourceDir    = "posts-md"
	DefaultOutputDir    = "posts"
	DefaultTemplatesDir = "templates"
	DefaultCacheFile    = ".build-cache.json"
	DefaultSourceExt    = ".md"
	DefaultIndexSize    = 5
	DefaultSiteTitle    = "Blog"
	DefaultKatexCSS     = "https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.css"
	DefaultKatexJS      = "https://cdn.jsdelivr.net/npm/katex@0.16.9/dist/katex.min.js"
	DefaultDebounce     = 300 * time.Millisecond
)

func applyDefaults(cfg *Config) {
	setDefault := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}

	setDefault(&cfg.SiteRoot, DefaultSiteRoot)
	setDefault(&cfg.SourceDir, DefaultSourceDir)
	setDefault(&cfg.OutputDir, DefaultOutputDir)
	setDefault(&cfg.TemplatesDir, DefaultTemplatesDir)
	setDefault(&cfg.CacheFile, DefaultCacheFile)
	setDefault(&cfg.SourceExt, DefaultSourceExt)
	setDefault(&cfg.Site.Title, DefaultSiteTitle)
	setDefault(&cfg.Site.KatexCSS, DefaultKatexCSS)
	setDefault(&cfg.Site.KatexJS, DefaultKatexJS)

	if cfg.IndexSize == 0 {
		cfg.IndexSize = DefaultIndexSize
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
}

package posts

import (
	"bytes"
	"context"
	"html"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
	"github.com/InfTape/inftape.github.io/internal/frontmatter"
	"github.com/InfTape/inftape.github.io/internal/incremental"
	"github.com/InfTape/inftape.github.io/internal/logfields"
	"github.com/InfTape/inftape.github.io/internal/markdown"
)

// DefaultExtension is the source file extension picked up by the loader.
const DefaultExtension = ".md"

// Loader reads every post source in a directory.
type Loader struct {
	dir      string
	ext      string
	renderer markdown.Renderer
	logger   *slog.Logger
	now      func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for per-file warnings.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithExtension overrides the source extension.
func WithExtension(ext string) LoaderOption {
	return func(l *Loader) {
		if ext != "" {
			l.ext = ext
		}
	}
}

// WithClock overrides the clock used for posts without a date.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoader creates a Loader for dir rendering bodies through r.
func NewLoader(dir string, r markdown.Renderer, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:      dir,
		ext:      DefaultExtension,
		renderer: r,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the source directory.
func (l *Loader) Dir() string { return l.dir }

// Load returns the current posts sorted newest first. A missing source
// directory is created and yields no posts. Failure to list the directory is
// fatal; problems with a single file are logged and that file is skipped.
func (l *Loader) Load(ctx context.Context) ([]*Post, error) {
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return nil, errors.FileSystemError("create source directory").WithCause(err).
			Fatal().WithContext("path", l.dir).Build()
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, errors.FileSystemError("read source directory").WithCause(err).
			Fatal().WithContext("path", l.dir).Build()
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || filepath.Ext(name) != l.ext {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]*Post, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(l.dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Skipping unreadable post source", logfields.Path(path), logfields.Error(err))
			continue
		}
		list = append(list, l.build(strings.TrimSuffix(name, l.ext), path, raw))
	}

	Sort(list)
	l.logger.Debug("Loaded posts", logfields.Path(l.dir), logfields.Count(len(list)))
	return list, nil
}

func (l *Loader) build(slug, path string, raw []byte) *Post {
	meta, body, err := frontmatter.Parse(raw)
	if err != nil {
		l.logger.Warn("Ignoring malformed front-matter", logfields.Path(path), logfields.Error(err))
	}

	title := meta.Title
	if title == "" {
		title = slug
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	return &Post{
		Slug:        slug,
		SourceHash:  incremental.Hash(raw),
		Title:       title,
		Date:        NormalizeDate(meta.Date, l.now()),
		Description: meta.Description,
		Tags:        tags,
		Content:     l.render(path, body),
		SourcePath:  path,
	}
}

func (l *Loader) render(path string, body []byte) template.HTML {
	res := l.renderer.Render(body)
	if res.Err == nil {
		return template.HTML(res.HTML) //nolint:gosec // rendered by goldmark from trusted local sources
	}
	l.logger.Warn("Markdown rendering failed, emitting source as preformatted text",
		logfields.Path(path), logfields.Error(res.Err))
	var buf bytes.Buffer
	buf.WriteString("<pre>")
	buf.WriteString(html.EscapeString(string(body)))
	buf.WriteString("</pre>\n")
	return template.HTML(buf.String()) //nolint:gosec // escaped above
}

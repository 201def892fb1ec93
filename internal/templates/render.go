// Package templates renders blog pages with html/template.
//
// Every page name (post, index, archive) is backed by an embedded default
// that can be replaced by dropping `<name>.html` into the templates
// directory. A page template invokes `{{template "layout" .}}` and defines
// "title" and "content"; the shared layout lives in layout.html and can be
// overridden the same way.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/InfTape/inftape.github.io/internal/logfields"
)

// Page template names.
const (
	PagePost    = "post"
	PageIndex   = "index"
	PageArchive = "archive"

	layoutName = "layout"
)

//go:embed defaults/*.html
var defaultsFS embed.FS

// Renderer produces the HTML for a named page.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// Engine is the html/template backed Renderer. Parsed templates are cached
// for the lifetime of the Engine; create a new one to pick up edits.
type Engine struct {
	dir    string
	logger *slog.Logger

	mu     sync.Mutex
	parsed map[string]*template.Template
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine reading overrides from dir. An empty dir uses
// the embedded defaults only.
func NewEngine(dir string, opts ...Option) *Engine {
	e := &Engine{
		dir:    dir,
		logger: slog.Default(),
		parsed: make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Render executes the page template name with data.
func (e *Engine) Render(name string, data any) (string, error) {
	tpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (e *Engine) lookup(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tpl, ok := e.parsed[name]; ok {
		return tpl, nil
	}

	layoutSrc, err := e.source(layoutName)
	if err != nil {
		return nil, err
	}
	pageSrc, err := e.source(name)
	if err != nil {
		return nil, err
	}

	tpl := template.New(name).Funcs(funcs)
	if _, err := tpl.Parse(layoutSrc); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", layoutName, err)
	}
	if _, err := tpl.Parse(pageSrc); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	e.parsed[name] = tpl
	return tpl, nil
}

// source returns the override from the templates directory if present,
// otherwise the embedded default.
func (e *Engine) source(name string) (string, error) {
	file := name + ".html"
	if e.dir != "" {
		path := filepath.Join(e.dir, file)
		// #nosec G304 -- path is built from a fixed template name under the configured directory.
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			e.logger.Debug("Using template override", logfields.Template(name), logfields.Path(path))
			return string(data), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("read template %s: %w", path, err)
		}
	}

	data, err := defaultsFS.ReadFile("defaults/" + file)
	if err != nil {
		return "", fmt.Errorf("unknown template %q: %w", name, err)
	}
	return string(data), nil
}

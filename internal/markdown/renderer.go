package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Result is the outcome of rendering a Markdown body. HTML is nil when Err is set.
type Result struct {
	HTML []byte
	Err  error
}

// Renderer converts a Markdown body (front-matter already removed) into HTML.
type Renderer interface {
	Render(src []byte) Result
}

// GoldmarkRenderer renders math spans and then Markdown with goldmark.
// It holds no per-call state and is safe to share.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
	math   *MathRenderer
}

// RendererOption configures a GoldmarkRenderer.
type RendererOption func(*GoldmarkRenderer)

// WithMath replaces the math pass. Passing nil disables it.
func WithMath(m *MathRenderer) RendererOption {
	return func(r *GoldmarkRenderer) {
		r.math = m
	}
}

// NewRenderer builds a renderer with GFM, hard line breaks and raw HTML
// passthrough enabled.
func NewRenderer(opts ...RendererOption) *GoldmarkRenderer {
	r := &GoldmarkRenderer{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
		math: NewMathRenderer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render implements Renderer.
func (r *GoldmarkRenderer) Render(src []byte) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: fmt.Errorf("markdown render panic: %v", p)}
		}
	}()

	body := src
	if r.math != nil {
		body = []byte(r.math.Render(string(src)))
	}

	var buf bytes.Buffer
	if err := r.engine.Convert(body, &buf); err != nil {
		return Result{Err: fmt.Errorf("markdown render: %w", err)}
	}
	return Result{HTML: buf.Bytes()}
}

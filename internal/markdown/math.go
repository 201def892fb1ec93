package markdown

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/InfTape/inftape.github.io/internal/logfields"
)

var (
	displayMathPattern = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	inlineMathPattern  = regexp.MustCompile(`\$([^$\n]+?)\$`)
)

var (
	// ErrEmptyExpression is reported for a delimiter pair with only whitespace between.
	ErrEmptyExpression = errors.New("empty math expression")
	// ErrUnbalancedBraces is reported when `{` and `}` do not pair up.
	ErrUnbalancedBraces = errors.New("unbalanced braces in math expression")
)

// MathResult is the outcome of converting a single math span.
type MathResult struct {
	Markup string
	Err    error
}

// MathRenderer rewrites `$$...$$` and `$...$` spans into placeholder elements
// that KaTeX renders in the browser.
type MathRenderer struct {
	logger *slog.Logger
}

// MathOption configures a MathRenderer.
type MathOption func(*MathRenderer)

// WithMathLogger sets the logger used for span failures.
func WithMathLogger(logger *slog.Logger) MathOption {
	return func(r *MathRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewMathRenderer creates a MathRenderer.
func NewMathRenderer(opts ...MathOption) *MathRenderer {
	r := &MathRenderer{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderMath converts math spans in text using a default MathRenderer.
func RenderMath(text string) string {
	return NewMathRenderer().Render(text)
}

// Render converts display spans first, then inline spans. Spans that fail to
// convert are left exactly as written. Text without delimiters is returned
// unchanged.
func (r *MathRenderer) Render(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}
	out := r.replace(text, displayMathPattern, true)
	return r.replace(out, inlineMathPattern, false)
}

func (r *MathRenderer) replace(text string, pattern *regexp.Regexp, display bool) string {
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := pattern.FindStringSubmatch(match)[1]
		res := r.Span(inner, display)
		if res.Err != nil {
			r.logger.Debug("Math span left as written",
				slog.Bool("display", display),
				logfields.Error(res.Err))
			return match
		}
		return res.Markup
	})
}

// Span converts the TeX source of one span into its placeholder element.
func (r *MathRenderer) Span(tex string, display bool) MathResult {
	tex = strings.TrimSpace(tex)
	if tex == "" {
		return MathResult{Err: ErrEmptyExpression}
	}
	if !bracesBalanced(tex) {
		return MathResult{Err: ErrUnbalancedBraces}
	}

	class := "katex"
	if display {
		class = "katex-display"
	}
	return MathResult{Markup: `<span class="` + class + `" data-tex="` + escapeAttr(tex) + `"></span>`}
}

func bracesBalanced(tex string) bool {
	depth := 0
	for i := 0; i < len(tex); i++ {
		switch tex[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&#39;",
	"$", "&#36;",
	"\r\n", "&#10;",
	"\n", "&#10;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

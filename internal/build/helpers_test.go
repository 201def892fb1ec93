package build

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/InfTape/inftape.github.io/internal/config"
	"github.com/InfTape/inftape.github.io/internal/templates"
)

type site struct {
	t    *testing.T
	root string
	cfg  *config.Config
	logs *bytes.Buffer
}

func newSite(t *testing.T) *site {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.SiteRoot = root
	cfg.Site.Title = "Test Blog"
	return &site{t: t, root: root, cfg: cfg, logs: &bytes.Buffer{}}
}

func (s *site) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (s *site) service(opts ...Option) *Service {
	base := []Option{WithLogger(s.logger())}
	return NewService(s.cfg, append(base, opts...)...)
}

func (s *site) writePost(slug, title, date, body string) {
	s.t.Helper()
	dir := s.cfg.SourcePath()
	require.NoError(s.t, os.MkdirAll(dir, 0o750))
	content := fmt.Sprintf("---\ntitle: %s\ndate: %s\n---\n%s\n", title, date, body)
	require.NoError(s.t, os.WriteFile(filepath.Join(dir, slug+".md"), []byte(content), 0o600))
}

func (s *site) removePost(slug string) {
	s.t.Helper()
	require.NoError(s.t, os.Remove(filepath.Join(s.cfg.SourcePath(), slug+".md")))
}

func (s *site) postPage(slug string) string {
	return filepath.Join(s.cfg.OutputPath(), slug, "index.html")
}

func (s *site) read(path string) string {
	s.t.Helper()
	// #nosec G304 -- test fixture path.
	data, err := os.ReadFile(path)
	require.NoError(s.t, err)
	return string(data)
}

// snapshot returns the modification time of every file under the site root
// except post sources.
func (s *site) snapshot() map[string]time.Time {
	s.t.Helper()
	out := map[string]time.Time{}
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out[path] = info.ModTime()
		return nil
	})
	require.NoError(s.t, err)
	return out
}

// flakyPages fails selected renders and delegates the rest.
type flakyPages struct {
	inner    templates.Renderer
	failPost string
	failPage string
}

func (f flakyPages) Render(name string, data any) (string, error) {
	if name == f.failPage {
		return "", fmt.Errorf("template %s exploded", name)
	}
	if page, ok := data.(templates.PostPage); ok && page.Post.Slug == f.failPost {
		return "", fmt.Errorf("post %s exploded", page.Post.Slug)
	}
	return f.inner.Render(name, data)
}

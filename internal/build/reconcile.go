package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/InfTape/inftape.github.io/internal/config"
	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
	"github.com/InfTape/inftape.github.io/internal/incremental"
	"github.com/InfTape/inftape.github.io/internal/logfields"
	"github.com/InfTape/inftape.github.io/internal/observability"
	"github.com/InfTape/inftape.github.io/internal/posts"
	"github.com/InfTape/inftape.github.io/internal/templates"
)

const (
	pageFile   = "index.html"
	archiveDir = "archive"
)

// PostFailure records a post whose page could not be produced.
type PostFailure struct {
	Slug string
	Err  error
}

// ReconcileResult describes what a reconciliation changed on disk.
type ReconcileResult struct {
	// Written lists every page path written, posts first.
	Written []string

	// Rebuilt lists slugs whose page was written.
	Rebuilt []string

	// Deleted lists slugs whose output directory was removed.
	Deleted []string

	Failed       []PostFailure
	BytesWritten int64

	// Skipped is set when nothing needed doing and nothing was written.
	Skipped bool
}

// Reconciler brings the output tree in line with a ChangeSet.
type Reconciler struct {
	siteRoot  string
	outputDir string
	indexSize int
	site      templates.Site
	renderer  templates.Renderer
	logger    *slog.Logger
	removeAll func(string) error
	writePage func(root, rel, content string) (string, error)
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger sets the logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRemoveFunc replaces os.RemoveAll for stale output directories.
func WithRemoveFunc(fn func(string) error) ReconcilerOption {
	return func(r *Reconciler) {
		if fn != nil {
			r.removeAll = fn
		}
	}
}

// WithPageWriter replaces templates.WritePage.
func WithPageWriter(fn func(root, rel, content string) (string, error)) ReconcilerOption {
	return func(r *Reconciler) {
		if fn != nil {
			r.writePage = fn
		}
	}
}

// NewReconciler creates a Reconciler for the layout described by cfg.
func NewReconciler(cfg *config.Config, renderer templates.Renderer, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		siteRoot:  cfg.SiteRoot,
		outputDir: cfg.OutputPath(),
		indexSize: cfg.IndexSize,
		site: templates.Site{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			KatexCSS:    cfg.Site.KatexCSS,
			KatexJS:     cfg.Site.KatexJS,
		},
		renderer:  renderer,
		logger:    slog.Default(),
		removeAll: os.RemoveAll,
		writePage: templates.WritePage,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile removes stale outputs, writes pages for posts in cs.ToRebuild and
// regenerates the index and archive pages. cache is updated in place: an
// entry is set only after its page is written and removed only after its
// directory is gone.
//
// When cs has no changes and force is false nothing is touched and the
// result is marked Skipped. A failing post is recorded in Failed and does not
// stop the run; a failing aggregate page is returned as an error.
func (r *Reconciler) Reconcile(ctx context.Context, cs incremental.ChangeSet, list []*posts.Post, cache *incremental.CacheState, force bool) (*ReconcileResult, error) {
	res := &ReconcileResult{}

	log := observability.Logger(observability.WithStage(ctx, "delete"), r.logger)
	for _, slug := range cs.ToDelete {
		r.deleteOutput(log, slug, cache, res)
	}

	if !cs.HasChanges() && !force {
		res.Skipped = true
		return res, nil
	}

	log = observability.Logger(observability.WithStage(ctx, "render"), r.logger)
	rebuild := make(map[string]struct{}, len(cs.ToRebuild))
	for _, slug := range cs.ToRebuild {
		rebuild[slug] = struct{}{}
	}
	for _, p := range list {
		if _, ok := rebuild[p.Slug]; !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.writePost(p, res); err != nil {
			log.Warn("Failed to generate post", logfields.Slug(p.Slug), logfields.Path(p.SourcePath), logfields.Error(err))
			res.Failed = append(res.Failed, PostFailure{Slug: p.Slug, Err: err})
			continue
		}
		cache.Set(p.Slug, p.SourceHash)
		res.Rebuilt = append(res.Rebuilt, p.Slug)
	}

	if err := r.writeAggregates(list, res); err != nil {
		return res, errors.WrapError(fmt.Errorf("%w: %w", ErrAggregate, err), errors.CategoryRender, "failed to generate aggregate pages").
			Fatal().Build()
	}
	return res, nil
}

func (r *Reconciler) deleteOutput(log *slog.Logger, slug string, cache *incremental.CacheState, res *ReconcileResult) {
	if !validSlug(slug) {
		log.Warn("Dropping cache entry with invalid slug", logfields.Slug(slug))
		cache.Remove(slug)
		return
	}
	dir := filepath.Join(r.outputDir, slug)
	if err := r.removeAll(dir); err != nil {
		log.Warn("Failed to remove stale post output", logfields.Slug(slug), logfields.Path(dir), logfields.Error(err))
		return
	}
	cache.Remove(slug)
	res.Deleted = append(res.Deleted, slug)
	log.Info("Removed deleted post", logfields.Slug(slug))
}

func validSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." &&
		!strings.ContainsAny(slug, `/\`) && filepath.Base(slug) == slug
}

func (r *Reconciler) links(pageDir string) templates.Links {
	return templates.LinksFor(r.siteRoot, r.outputDir, pageDir)
}

func (r *Reconciler) writePost(p *posts.Post, res *ReconcileResult) error {
	html, err := r.renderer.Render(templates.PagePost, templates.PostPage{
		Site:  r.site,
		Links: r.links(filepath.Join(r.outputDir, p.Slug)),
		Post:  p,
	})
	if err != nil {
		return err
	}
	return r.write(r.outputDir, filepath.Join(p.Slug, pageFile), html, res)
}

func (r *Reconciler) writeAggregates(list []*posts.Post, res *ReconcileResult) error {
	recent := list
	if len(recent) > r.indexSize {
		recent = recent[:r.indexSize]
	}
	html, err := r.renderer.Render(templates.PageIndex, templates.IndexPage{
		Site:  r.site,
		Links: r.links(r.siteRoot),
		Posts: recent,
		Total: len(list),
	})
	if err != nil {
		return err
	}
	if err := r.write(r.siteRoot, pageFile, html, res); err != nil {
		return err
	}

	html, err = r.renderer.Render(templates.PageArchive, templates.ArchivePage{
		Site:  r.site,
		Links: r.links(filepath.Join(r.siteRoot, archiveDir)),
		Years: posts.GroupByYear(list),
		Total: len(list),
	})
	if err != nil {
		return err
	}
	return r.write(r.siteRoot, filepath.Join(archiveDir, pageFile), html, res)
}

func (r *Reconciler) write(root, rel, content string, res *ReconcileResult) error {
	path, err := r.writePage(root, rel, content)
	if err != nil {
		return err
	}
	res.Written = append(res.Written, path)
	res.BytesWritten += int64(len(content))
	return nil
}

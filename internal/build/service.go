package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/InfTape/inftape.github.io/internal/config"
	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
	"github.com/InfTape/inftape.github.io/internal/incremental"
	"github.com/InfTape/inftape.github.io/internal/logfields"
	"github.com/InfTape/inftape.github.io/internal/markdown"
	"github.com/InfTape/inftape.github.io/internal/metrics"
	"github.com/InfTape/inftape.github.io/internal/observability"
	"github.com/InfTape/inftape.github.io/internal/posts"
	"github.com/InfTape/inftape.github.io/internal/templates"
)

// BuildRequest contains the inputs of a single build.
type BuildRequest struct {
	// Force ignores the cache and regenerates every post.
	Force bool
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every scheduled page was written.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusPartial indicates some posts failed but the site was updated.
	BuildStatusPartial BuildStatus = "partial"

	// BuildStatusSkipped indicates nothing needed to be written.
	BuildStatusSkipped BuildStatus = "skipped"

	// BuildStatusFailed indicates the build stopped on a fatal error.
	BuildStatusFailed BuildStatus = "failed"
)

// IsSuccess reports whether every scheduled page was written or nothing
// needed writing.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusSkipped
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	BuildID string
	Status  BuildStatus

	// Posts is the number of posts found in the source directory.
	Posts     int
	Rebuilt   int
	Unchanged int
	Deleted   int
	Failures  []PostFailure

	BytesWritten int64

	// SkipReason explains why the build was skipped (if Status is skipped).
	SkipReason string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Skip reasons.
const (
	SkipReasonNoChanges = "no_changes"
	SkipReasonNoPosts   = "no_posts"
)

// Service runs builds for one configuration.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	gatherer prom.Gatherer
	markdown markdown.Renderer
	pages    templates.Renderer
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMetricsTextfile exports g to the configured metrics textfile after each build.
func WithMetricsTextfile(g prom.Gatherer) Option {
	return func(s *Service) {
		s.gatherer = g
	}
}

// WithMarkdownRenderer replaces the goldmark renderer.
func WithMarkdownRenderer(r markdown.Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.markdown = r
		}
	}
}

// WithTemplates uses r for every build instead of a fresh templates.Engine
// per build.
func WithTemplates(r templates.Renderer) Option {
	return func(s *Service) {
		s.pages = r
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the build ID source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a build Service.
func NewService(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.markdown == nil {
		s.markdown = markdown.NewRenderer(markdown.WithMath(markdown.NewMathRenderer(markdown.WithMathLogger(s.logger))))
	}
	return s
}

// Run executes one build: load → resolve → reconcile → save.
func (s *Service) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := s.now()
	result := &BuildResult{BuildID: s.newID(), StartTime: start}
	ctx = observability.WithBuildID(ctx, result.BuildID)
	log := observability.Logger(ctx, s.logger)

	if s.cfg == nil {
		return s.fail(result, errors.ConfigError("config required").Build())
	}

	log.Info("Starting blog build", slog.Bool("force", req.Force), logfields.Path(s.cfg.SourcePath()))

	// Stage 1: load posts
	stageStart := s.now()
	loader := posts.NewLoader(s.cfg.SourcePath(), s.markdown,
		posts.WithExtension(s.cfg.SourceExt),
		posts.WithLogger(observability.Logger(observability.WithStage(ctx, "load"), s.logger)),
		posts.WithClock(s.now))
	list, err := loader.Load(ctx)
	s.recorder.ObserveStageDuration("load", s.now().Sub(stageStart))
	if err != nil {
		if !errors.IsClassified(err) {
			err = errors.SourceError("failed to load posts").WithCause(fmt.Errorf("%w: %w", ErrLoad, err)).Fatal().Build()
		}
		return s.fail(result, err)
	}
	result.Posts = len(list)

	// Stage 2: cache + change set
	cache := incremental.NewBuildCache(s.cfg.CachePath()).
		WithLogger(observability.Logger(observability.WithStage(ctx, "cache"), s.logger))
	state := incremental.NewCacheState()
	if !req.Force {
		state = cache.Load()
	}

	if len(list) == 0 && state.Len() == 0 {
		log.Info("No posts found. Add Markdown files to " + loader.Dir() + " with front-matter like:\n" + frontMatterExample)
		result.SkipReason = SkipReasonNoPosts
		return s.finish(result, BuildStatusSkipped), nil
	}

	cs := incremental.Resolve(list, state)
	log.Debug("Resolved change set",
		slog.Int("rebuild", len(cs.ToRebuild)),
		slog.Int("delete", len(cs.ToDelete)),
		slog.Int("unchanged", len(cs.Unchanged)))

	// Stage 3: reconcile outputs
	stageStart = s.now()
	rec := NewReconciler(s.cfg, s.templates(), WithReconcilerLogger(s.logger))
	res, err := rec.Reconcile(ctx, cs, list, state, req.Force)
	s.recorder.ObserveStageDuration("reconcile", s.now().Sub(stageStart))
	if res != nil {
		result.Rebuilt = len(res.Rebuilt)
		result.Deleted = len(res.Deleted)
		result.Failures = res.Failed
		result.BytesWritten = res.BytesWritten
	}
	result.Unchanged = len(cs.Unchanged)
	if err != nil {
		return s.fail(result, err)
	}

	if res.Skipped {
		log.Info(fmt.Sprintf("No changes detected. %d post(s) up to date.", len(list)))
		log.Info("Use --force to rebuild all posts")
		result.SkipReason = SkipReasonNoChanges
		return s.finish(result, BuildStatusSkipped), nil
	}

	// Stage 4: persist cache
	if err := cache.Save(state); err != nil {
		return s.fail(result, errors.CacheError("failed to save build cache").WithCause(fmt.Errorf("%w: %w", ErrCacheSave, err)).
			Fatal().WithContext("path", cache.Path()).Build())
	}

	status := BuildStatusSuccess
	if len(res.Failed) > 0 {
		status = BuildStatusPartial
	}
	s.finish(result, status)

	var summary string
	switch {
	case len(cs.ToRebuild) == 0:
		summary = fmt.Sprintf("Removed %d deleted post(s), %d up to date", result.Deleted, len(list))
	case len(cs.ToRebuild) < len(list):
		summary = fmt.Sprintf("Incremental: %d/%d rebuilt", result.Rebuilt, len(list))
	default:
		summary = fmt.Sprintf("Full build: %d generated", result.Rebuilt)
	}
	log.Info(summary,
		slog.Int("deleted", result.Deleted),
		slog.Int("failed", len(result.Failures)),
		slog.String("written", humanize.Bytes(uint64(max(result.BytesWritten, 0)))),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return result, nil
}

const frontMatterExample = `---
title: My First Post
date: 2026-01-11
description: A brief description
tags: [example]
---
Math works too: $inline$ or $$display$$.`

func (s *Service) templates() templates.Renderer {
	if s.pages != nil {
		return s.pages
	}
	return templates.NewEngine(s.cfg.TemplatesPath(), templates.WithLogger(s.logger))
}

func (s *Service) fail(result *BuildResult, err error) (*BuildResult, error) {
	s.finish(result, BuildStatusFailed)
	return result, err
}

func (s *Service) finish(result *BuildResult, status BuildStatus) *BuildResult {
	result.Status = status
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.recorder.ObserveBuildDuration(result.Duration)
	s.recorder.IncBuildOutcome(metrics.BuildOutcome(status))
	s.recorder.AddPosts(metrics.PostRebuilt, result.Rebuilt)
	s.recorder.AddPosts(metrics.PostUnchanged, result.Unchanged)
	s.recorder.AddPosts(metrics.PostDeleted, result.Deleted)
	s.recorder.AddPosts(metrics.PostFailed, len(result.Failures))
	if status != BuildStatusSkipped {
		s.exportMetrics()
	}
	return result
}

func (s *Service) exportMetrics() {
	if s.gatherer == nil || s.cfg == nil {
		return
	}
	path := s.cfg.MetricsTextfilePath()
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path, s.gatherer); err != nil {
		s.logger.Warn("Failed to export metrics", logfields.Path(path), logfields.Error(err))
	}
}

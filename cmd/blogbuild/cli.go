package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/InfTape/inftape.github.io/internal/build"
	"github.com/InfTape/inftape.github.io/internal/config"
	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
	"github.com/InfTape/inftape.github.io/internal/metrics"
	"github.com/InfTape/inftape.github.io/internal/version"
	"github.com/InfTape/inftape.github.io/internal/watch"
)

// envLogLevel selects the log level (debug, info, warn, error).
const envLogLevel = "BLOGBUILD_LOG_LEVEL"

// CLI is the command line of blogbuild.
type CLI struct {
	Force bool `help:"Rebuild every post, ignoring the build cache."`
	Watch bool `help:"Keep running and rebuild when post sources change. With --force only the first build is forced."`

	loadConfig func() (*config.Config, error) `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel()}))
	slog.SetDefault(logger)
	return nil
}

func parseLogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Run loads the configuration and performs one build, or keeps building
// in watch mode until ctx is canceled.
func (c *CLI) Run(ctx context.Context) error {
	load := c.loadConfig
	if load == nil {
		load = config.LoadDefault
	}
	cfg, err := load()
	if err != nil {
		return err
	}

	logger := slog.Default()
	logger.Debug("blogbuild", slog.String("version", version.String()))
	svc := build.NewService(cfg, serviceOptions(cfg, logger)...)

	if c.Watch {
		w := watch.New(func(ctx context.Context, force bool) error {
			_, err := svc.Run(ctx, build.BuildRequest{Force: force})
			return err
		}, []string{cfg.SourcePath()},
			watch.WithDebounce(cfg.Watch.Debounce),
			watch.WithExtension(cfg.SourceExt),
			watch.WithLogger(logger))
		return w.Run(ctx, c.Force)
	}

	res, err := svc.Run(ctx, build.BuildRequest{Force: c.Force})
	if err != nil {
		return err
	}
	if res.Status.IsSuccess() {
		return nil
	}
	b := errors.RenderError(fmt.Sprintf("%d post(s) failed to build", len(res.Failures)))
	if len(res.Failures) > 0 {
		b = b.WithContext("first", res.Failures[0].Slug)
	}
	return b.Build()
}

func serviceOptions(cfg *config.Config, logger *slog.Logger) []build.Option {
	opts := []build.Option{build.WithLogger(logger)}
	if cfg.Metrics.Textfile != "" {
		reg := prom.NewRegistry()
		opts = append(opts,
			build.WithRecorder(metrics.NewPrometheusRecorder(reg)),
			build.WithMetricsTextfile(reg))
	}
	return opts
}

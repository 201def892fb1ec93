package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
)

// Validate checks a configuration with defaults applied.
func Validate(cfg *Config) error {
	if cfg.IndexSize < 1 {
		return errors.ConfigError(fmt.Sprintf("index_size must be positive, got %d", cfg.IndexSize)).Build()
	}
	if cfg.Watch.Debounce < 0 {
		return errors.ConfigError(fmt.Sprintf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)).Build()
	}
	if !strings.HasPrefix(cfg.SourceExt, ".") || len(cfg.SourceExt) < 2 {
		return errors.ConfigError(fmt.Sprintf("source_ext must look like \".md\", got %q", cfg.SourceExt)).Build()
	}

	root := filepath.Clean(cfg.SiteRoot)
	source := filepath.Clean(cfg.SourcePath())
	output := filepath.Clean(cfg.OutputPath())
	if source == output {
		return errors.ConfigError("source_dir and output_dir must differ").
			WithContext("path", source).Build()
	}
	// Post directories are removed wholesale, so they must not share the
	// site root with the aggregate pages.
	if output == root {
		return errors.ConfigError("output_dir must be a sub-directory of site_root").
			WithContext("path", output).Build()
	}
	if rel, err := filepath.Rel(output, source); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.ConfigError("source_dir must not live inside output_dir").
			WithContext("path", source).Build()
	}
	return nil
}

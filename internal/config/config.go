// Package config loads blogbuild.yaml and resolves the site layout.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
)

const (
	// DefaultFile is read from the working directory when no path is given.
	DefaultFile = "blogbuild.yaml"
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "BLOGBUILD_CONFIG"
)

// Config is the blog generator configuration.
type Config struct {
	SiteRoot     string `yaml:"site_root"`
	SourceDir    string `yaml:"source_dir"`
	OutputDir    string `yaml:"output_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	CacheFile    string `yaml:"cache_file"`
	SourceExt    string `yaml:"source_ext"`
	IndexSize    int    `yaml:"index_size"`

	Site    SiteConfig    `yaml:"site"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SiteConfig holds values shown on every page.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	KatexCSS    string `yaml:"katex_css"`
	KatexJS     string `yaml:"katex_js"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written after each build when set.
	Textfile string `yaml:"textfile,omitempty"`
}

// LoadDefault loads the file named by BLOGBUILD_CONFIG, or blogbuild.yaml in
// the working directory. A missing default file yields the defaults; a
// missing file named explicitly is an error.
func LoadDefault() (*Config, error) {
	loadEnvFiles()

	if path := os.Getenv(EnvConfigPath); path != "" {
		return load(path, true)
	}
	return load(DefaultFile, false)
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()
	return load(configPath, true)
}

func load(configPath string, required bool) (*Config, error) {
	var cfg Config

	// #nosec G304 -- config path is chosen by the operator.
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
				WithContext("path", configPath).Build()
		}
	case stderrors.Is(err, fs.ErrNotExist) && !required:
	case stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).Build()
	default:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).Build()
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.SiteRoot, p)
}

// SourcePath is the directory holding post sources.
func (c *Config) SourcePath() string { return c.resolve(c.SourceDir) }

// OutputPath is the directory receiving one sub-directory per post.
func (c *Config) OutputPath() string { return c.resolve(c.OutputDir) }

// TemplatesPath is the directory searched for template overrides.
func (c *Config) TemplatesPath() string { return c.resolve(c.TemplatesDir) }

// CachePath is the build cache file.
func (c *Config) CachePath() string { return c.resolve(c.CacheFile) }

// MetricsTextfilePath is the metrics export target, empty when disabled.
func (c *Config) MetricsTextfilePath() string { return c.resolve(c.Metrics.Textfile) }

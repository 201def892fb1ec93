package incremental

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/InfTape/inftape.github.io/internal/logfields"
)

// CacheVersion is the schema version written to and accepted from the cache file.
const CacheVersion = 1

// CacheEntry records the source fingerprint a post had when its page was last
// written successfully.
type CacheEntry struct {
	SourceHash string `json:"sourceHash"`
}

// CacheState maps post slugs to their last-built fingerprints.
type CacheState struct {
	Version int                   `json:"version"`
	Posts   map[string]CacheEntry `json:"posts"`
}

// NewCacheState returns an empty state. Resolving against it marks every post
// for rebuild.
func NewCacheState() *CacheState {
	return &CacheState{
		Version: CacheVersion,
		Posts:   map[string]CacheEntry{},
	}
}

// Lookup returns the entry for slug.
func (s *CacheState) Lookup(slug string) (CacheEntry, bool) {
	if s == nil {
		return CacheEntry{}, false
	}
	entry, ok := s.Posts[slug]
	return entry, ok
}

// Set records hash as the last-built fingerprint of slug.
func (s *CacheState) Set(slug, hash string) {
	if s.Posts == nil {
		s.Posts = map[string]CacheEntry{}
	}
	s.Posts[slug] = CacheEntry{SourceHash: hash}
}

// Remove drops the entry for slug.
func (s *CacheState) Remove(slug string) {
	delete(s.Posts, slug)
}

// Len returns the number of cached posts.
func (s *CacheState) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Posts)
}

// BuildCache persists CacheState as a single JSON document.
type BuildCache struct {
	path   string
	logger *slog.Logger
}

// NewBuildCache creates a build cache stored at path.
func NewBuildCache(path string) *BuildCache {
	return &BuildCache{
		path:   path,
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (c *BuildCache) WithLogger(logger *slog.Logger) *BuildCache {
	c.logger = logger
	return c
}

// Path returns the location of the cache file.
func (c *BuildCache) Path() string {
	return c.path
}

// Load reads the persisted state. A missing, unreadable or unparseable cache
// never fails the build: it yields an empty state, with a warning for the
// latter two.
func (c *BuildCache) Load() *CacheState {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("Cache file unreadable, rebuilding from scratch", logfields.Path(c.path), logfields.Error(err))
		}
		return NewCacheState()
	}

	state, err := parseCacheState(data)
	if err != nil {
		c.logger.Warn("Cache file corrupted, rebuilding from scratch", logfields.Path(c.path), logfields.Error(err))
		return NewCacheState()
	}
	return state
}

// Save writes state to the cache file, replacing previous content atomically.
func (c *BuildCache) Save(state *CacheState) error {
	if state == nil {
		state = NewCacheState()
	}
	data, err := marshalCacheState(state)
	if err != nil {
		return fmt.Errorf("marshal build cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create cache directory %s: %w", dir, err)
		}
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write build cache %s: %w", c.path, err)
	}
	c.logger.Debug("Saved build cache", logfields.Path(c.path), logfields.Count(state.Len()))
	return nil
}

func parseCacheState(data []byte) (*CacheState, error) {
	var state CacheState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse build cache: %w", err)
	}
	if state.Version == 0 {
		state.Version = CacheVersion
	}
	if state.Version > CacheVersion {
		return nil, fmt.Errorf("unsupported build cache version %d", state.Version)
	}
	if state.Posts == nil {
		state.Posts = map[string]CacheEntry{}
	}
	return &state, nil
}

func marshalCacheState(state *CacheState) ([]byte, error) {
	out := *state
	if out.Version == 0 {
		out.Version = CacheVersion
	}
	if out.Posts == nil {
		out.Posts = map[string]CacheEntry{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

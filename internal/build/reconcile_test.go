package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/InfTape/inftape.github.io/internal/incremental"
	"github.com/InfTape/inftape.github.io/internal/posts"
	"github.com/InfTape/inftape.github.io/internal/templates"
)

func testPosts() []*posts.Post {
	return []*posts.Post{
		{Slug: "new", Title: "New", Date: "2026-02-01", SourceHash: "h-new", Tags: []string{}},
		{Slug: "old", Title: "Old", Date: "2025-02-01", SourceHash: "h-old", Tags: []string{}},
	}
}

func TestReconciler_WritesPostsThenAggregates(t *testing.T) {
	s := newSite(t)
	list := testPosts()
	cache := incremental.NewCacheState()
	cs := incremental.Resolve(list, cache)

	rec := NewReconciler(s.cfg, templates.NewEngine(""), WithReconcilerLogger(s.logger()))
	res, err := rec.Reconcile(context.Background(), cs, list, cache, false)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, []string{"new", "old"}, res.Rebuilt)
	require.Equal(t, []string{
		s.postPage("new"),
		s.postPage("old"),
		filepath.Join(s.root, "index.html"),
		filepath.Join(s.root, "archive", "index.html"),
	}, res.Written)
	require.Positive(t, res.BytesWritten)

	entry, ok := cache.Lookup("old")
	require.True(t, ok)
	require.Equal(t, "h-old", entry.SourceHash)
}

func TestReconciler_SkipsWhenNothingChanged(t *testing.T) {
	s := newSite(t)
	list := testPosts()
	cache := incremental.NewCacheState()
	for _, p := range list {
		cache.Set(p.Slug, p.SourceHash)
	}
	cs := incremental.Resolve(list, cache)

	res, err := NewReconciler(s.cfg, templates.NewEngine("")).Reconcile(context.Background(), cs, list, cache, false)
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Empty(t, res.Written)
	require.NoFileExists(t, filepath.Join(s.root, "index.html"))
}

func TestReconciler_ForceIgnoresEmptyChangeSet(t *testing.T) {
	s := newSite(t)
	list := testPosts()

	res, err := NewReconciler(s.cfg, templates.NewEngine("")).
		Reconcile(context.Background(), incremental.ChangeSet{}, list, incremental.NewCacheState(), true)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Empty(t, res.Rebuilt)
	require.FileExists(t, filepath.Join(s.root, "index.html"))
}

func TestReconciler_DeleteFailureKeepsCacheEntry(t *testing.T) {
	s := newSite(t)
	cache := incremental.NewCacheState()
	cache.Set("stuck", "h")
	cache.Set("gone", "h")
	cs := incremental.ChangeSet{ToDelete: []string{"gone", "stuck"}}

	rec := NewReconciler(s.cfg, templates.NewEngine(""),
		WithReconcilerLogger(s.logger()),
		WithRemoveFunc(func(path string) error {
			if filepath.Base(path) == "stuck" {
				return fmt.Errorf("device busy")
			}
			return os.RemoveAll(path)
		}))
	res, err := rec.Reconcile(context.Background(), cs, nil, cache, false)
	require.NoError(t, err)
	require.Equal(t, []string{"gone"}, res.Deleted)

	_, ok := cache.Lookup("stuck")
	require.True(t, ok)
	_, ok = cache.Lookup("gone")
	require.False(t, ok)
	require.Contains(t, s.logs.String(), "Failed to remove stale post output")
}

func TestReconciler_RemovesExistingOutputDirectory(t *testing.T) {
	s := newSite(t)
	dir := filepath.Join(s.cfg.OutputPath(), "stale")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o600))
	cache := incremental.NewCacheState()
	cache.Set("stale", "h")

	_, err := NewReconciler(s.cfg, templates.NewEngine("")).
		Reconcile(context.Background(), incremental.ChangeSet{ToDelete: []string{"stale"}}, nil, cache, false)
	require.NoError(t, err)
	require.NoDirExists(t, dir)
	require.Zero(t, cache.Len())
}

func TestReconciler_InvalidSlugNeverTouchesDisk(t *testing.T) {
	s := newSite(t)
	outside := filepath.Join(s.root, "keep")
	require.NoError(t, os.MkdirAll(outside, 0o750))
	cache := incremental.NewCacheState()
	cache.Set("../keep", "h")

	removed := false
	rec := NewReconciler(s.cfg, templates.NewEngine(""), WithRemoveFunc(func(string) error {
		removed = true
		return nil
	}))
	_, err := rec.Reconcile(context.Background(), incremental.ChangeSet{ToDelete: []string{"../keep"}}, nil, cache, false)
	require.NoError(t, err)
	require.False(t, removed)
	require.DirExists(t, outside)
	require.Zero(t, cache.Len())
}

func TestReconciler_CanceledContext(t *testing.T) {
	s := newSite(t)
	list := testPosts()
	cache := incremental.NewCacheState()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReconciler(s.cfg, templates.NewEngine("")).Reconcile(ctx, incremental.Resolve(list, cache), list, cache, false)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, cache.Len())
}

func TestReconciler_IndexHonoursSize(t *testing.T) {
	s := newSite(t)
	s.cfg.IndexSize = 1
	list := testPosts()
	cache := incremental.NewCacheState()

	_, err := NewReconciler(s.cfg, templates.NewEngine("")).Reconcile(context.Background(), incremental.Resolve(list, cache), list, cache, false)
	require.NoError(t, err)
	index := s.read(filepath.Join(s.root, "index.html"))
	require.Contains(t, index, `href="posts/new/"`)
	require.NotContains(t, index, `href="posts/old/"`)
	require.Contains(t, index, "All 2 posts")
}

package watch

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"/blog/posts-md/hello.md", false},
		{"/blog/posts-md/.hello.md.swp", true},
		{"/blog/posts-md/hello.md.swp", true},
		{"/blog/posts-md/hello.md~", true},
		{"/blog/posts-md/#hello.md#", true},
		{"/blog/posts-md/.DS_Store", true},
		{"/blog/posts-md/Thumbs.db", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.ignore, shouldIgnoreEvent(tt.path))
		})
	}
}

func TestWatcher_Relevant(t *testing.T) {
	w := New(nil, nil, WithExtension(".md"))

	require.True(t, w.relevant(fsnotify.Event{Name: "/s/a.md", Op: fsnotify.Write}))
	require.True(t, w.relevant(fsnotify.Event{Name: "/s/a.md", Op: fsnotify.Remove}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/s/a.md", Op: fsnotify.Chmod}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/s/a.txt", Op: fsnotify.Create}))
	require.False(t, w.relevant(fsnotify.Event{Name: "/s/.a.md", Op: fsnotify.Create}))

	all := New(nil, nil)
	require.True(t, all.relevant(fsnotify.Event{Name: "/s/a.txt", Op: fsnotify.Create}))
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prom.Registry, name, label, value string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("load", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.AddPosts(PostRebuilt, 2)
	pr.AddPosts(PostRebuilt, 1)
	pr.AddPosts(PostFailed, 0)
	pr.IncBuildOutcome(OutcomeSuccess)

	require.InDelta(t, 3, counterValue(t, reg, "blogbuild_posts_total", "result", "rebuilt"), 0)
	require.InDelta(t, 0, counterValue(t, reg, "blogbuild_posts_total", "result", "failed"), 0)
	require.InDelta(t, 1, counterValue(t, reg, "blogbuild_build_outcomes_total", "outcome", "success"), 0)
	require.Same(t, reg, pr.Registry())
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.ObserveBuildDuration(time.Second)
		pr.AddPosts(PostDeleted, 1)
		pr.IncBuildOutcome(OutcomeFailed)
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	require.NotPanics(t, func() {
		r.ObserveStageDuration("load", time.Second)
		r.ObserveBuildDuration(time.Second)
		r.AddPosts(PostUnchanged, 3)
		r.IncBuildOutcome(OutcomeSkipped)
	})
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.ObserveBuildDuration(time.Second)
	pr.IncBuildOutcome(OutcomePartial)

	path := filepath.Join(t.TempDir(), "nested", "blogbuild.prom")
	require.NoError(t, WriteTextfile(path, pr.Registry()))

	// #nosec G304 -- path is controlled by test.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, "blogbuild_build_duration_seconds_count 1"))
	require.Contains(t, text, `blogbuild_build_outcomes_total{outcome="partial"} 1`)

	require.NoError(t, WriteTextfile("", pr.Registry()))
}

package metrics

import "time"

// PostResult labels per-post counters.
type PostResult string

const (
	PostRebuilt   PostResult = "rebuilt"
	PostUnchanged PostResult = "unchanged"
	PostDeleted   PostResult = "deleted"
	PostFailed    PostResult = "failed"
)

// BuildOutcome labels the final status of a build.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomePartial BuildOutcome = "partial"
	OutcomeSkipped BuildOutcome = "skipped"
	OutcomeFailed  BuildOutcome = "failed"
)

// Recorder defines observability hooks for build metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	AddPosts(result PostResult, n int)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) AddPosts(PostResult, int)                   {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}

package metrics

import "time"

// ResolveOutcome enumerates resolver result categories for counters.
type ResolveOutcome string

const (
	ResolveLiteral ResolveOutcome = "literal"
	ResolveDerived ResolveOutcome = "derived"
	ResolveMiss    ResolveOutcome = "miss"
)

// Recorder defines observability hooks for build and resolver metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on a NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncNodeWritten(extension string)
	IncResolveOutcome(outcome ResolveOutcome)
	IncDependencyFailure()
	IncHTTPRequest(status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)  {}
func (NoopRecorder) IncNodeWritten(string)               {}
func (NoopRecorder) IncResolveOutcome(ResolveOutcome)    {}
func (NoopRecorder) IncDependencyFailure()               {}
func (NoopRecorder) IncHTTPRequest(int)                  {}

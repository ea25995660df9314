package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_RegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveBuildDuration(120 * time.Millisecond)
	rec.IncNodeWritten("html")
	rec.IncNodeWritten("")
	rec.IncResolveOutcome(ResolveDerived)
	rec.IncDependencyFailure()
	rec.IncHTTPRequest(200)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["quine_build_duration_seconds"])
	require.True(t, names["quine_nodes_written_total"])
	require.True(t, names["quine_resolve_outcomes_total"])
	require.True(t, names["quine_dependency_failures_total"])
	require.True(t, names["quine_http_requests_total"])
}

func TestNilRecorderMethodsAreSafe(t *testing.T) {
	var rec *PrometheusRecorder
	rec.ObserveBuildDuration(time.Second)
	rec.IncNodeWritten("css")
	rec.IncResolveOutcome(ResolveMiss)
	rec.IncDependencyFailure()
	rec.IncHTTPRequest(500)
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var _ Recorder = NoopRecorder{}
}

package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration       prom.Histogram
	nodesWritten        *prom.CounterVec
	resolveOutcomes     *prom.CounterVec
	dependencyFailures  prom.Counter
	httpRequests        *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "quine",
			Name:      "build_duration_seconds",
			Help:      "Total duration of one full graph build",
			Buckets:   prom.DefBuckets,
		}),
		nodesWritten: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "quine",
			Name:      "nodes_written_total",
			Help:      "Nodes written to the output tree, by extension",
		}, []string{"extension"}),
		resolveOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "quine",
			Name:      "resolve_outcomes_total",
			Help:      "Resolver outcomes (literal hit, compile-target derivation, miss)",
		}, []string{"outcome"}),
		dependencyFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "quine",
			Name:      "dependency_failures_total",
			Help:      "Dependency subtrees that failed and were skipped",
		}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "quine",
			Name:      "http_requests_total",
			Help:      "Dev server requests by status code",
		}, []string{"status"}),
	}
	reg.MustRegister(pr.buildDuration, pr.nodesWritten, pr.resolveOutcomes, pr.dependencyFailures, pr.httpRequests)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncNodeWritten(extension string) {
	if p == nil || p.nodesWritten == nil {
		return
	}
	if extension == "" {
		extension = "none"
	}
	p.nodesWritten.WithLabelValues(extension).Inc()
}

func (p *PrometheusRecorder) IncResolveOutcome(outcome ResolveOutcome) {
	if p == nil || p.resolveOutcomes == nil {
		return
	}
	p.resolveOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncDependencyFailure() {
	if p == nil || p.dependencyFailures == nil {
		return
	}
	p.dependencyFailures.Inc()
}

func (p *PrometheusRecorder) IncHTTPRequest(status int) {
	if p == nil || p.httpRequests == nil {
		return
	}
	p.httpRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

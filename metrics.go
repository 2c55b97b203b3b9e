package pubstatic

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records build activity on a Prometheus registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	buildDuration prometheus.Histogram
	buildOutcomes *prometheus.CounterVec
	nodes         *prometheus.CounterVec
	pages         *prometheus.CounterVec
	queryFailures prometheus.Counter
}

// NewMetrics constructs and registers the build metrics on reg. A nil reg
// gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Registry: reg,
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pubstatic",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prometheus.DefBuckets,
		}),
		buildOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubstatic",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubstatic",
			Name:      "nodes_ingested_total",
			Help:      "Ingested nodes by result",
		}, []string{"result"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pubstatic",
			Name:      "pages_created_total",
			Help:      "Pages written by template",
		}, []string{"template"}),
		queryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pubstatic",
			Name:      "query_failures_total",
			Help:      "Page planning aborted by query errors",
		}),
	}
	reg.MustRegister(m.buildDuration, m.buildOutcomes, m.nodes, m.pages, m.queryFailures)
	return m
}

// ObserveBuild records the duration and outcome of a build.
func (m *Metrics) ObserveBuild(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(d.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	m.buildOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveIngest records one ingestion pass.
func (m *Metrics) ObserveIngest(s IngestStats) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues("created").Add(float64(s.Created))
	m.nodes.WithLabelValues("updated").Add(float64(s.Updated))
	m.nodes.WithLabelValues("unchanged").Add(float64(s.Unchanged))
	m.nodes.WithLabelValues("deleted").Add(float64(s.Deleted))
}

// IncPage counts a written page.
func (m *Metrics) IncPage(template string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(template).Inc()
}

// IncQueryFailure counts a planning run aborted by query errors.
func (m *Metrics) IncQueryFailure() {
	if m == nil {
		return
	}
	m.queryFailures.Inc()
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

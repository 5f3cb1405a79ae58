package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusReporter implements Reporter over a dedicated metric set,
// namespaced the way InitMetrics does in the logistics example: one
// promauto-registered family per concern, no package-level registry.
type PrometheusReporter struct {
	queriesTotal    *prometheus.CounterVec
	queryDuration   prometheus.Histogram
	pathLength      prometheus.Histogram
	flowDeposits    prometheus.Counter
	customizations  prometheus.Counter
	customizeTime   prometheus.Histogram
	stalenessEvents prometheus.Counter
}

// NewPrometheusReporter registers a fresh metric set under namespace/
// subsystem against reg. Pass prometheus.DefaultRegisterer for the
// process-wide registry, or a fresh *prometheus.Registry in tests.
func NewPrometheusReporter(reg prometheus.Registerer, namespace, subsystem string) *PrometheusReporter {
	factory := promauto.With(reg)
	return &PrometheusReporter{
		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queries_total",
			Help:      "Total number of routing queries, labeled by outcome.",
		}, []string{"found"}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "query_duration_seconds",
			Help:      "Latency of a single routing query.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		pathLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "path_length_edges",
			Help:      "Number of edges in a settled query's path.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		flowDeposits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flow_deposits_total",
			Help:      "Total number of flow-unit deposits into edge buckets.",
		}),
		customizations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "customization_runs_total",
			Help:      "Total number of bounded re-customization passes.",
		}),
		customizeTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "customization_duration_seconds",
			Help:      "Duration of a bounded re-customization pass.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 5, 10},
		}),
		stalenessEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "staleness_events_total",
			Help:      "Total number of query boundaries that triggered re-customization.",
		}),
	}
}

func (p *PrometheusReporter) QueryCompleted(found bool, pathLen int, latency time.Duration) {
	label := "true"
	if !found {
		label = "false"
	}
	p.queriesTotal.WithLabelValues(label).Inc()
	p.queryDuration.Observe(latency.Seconds())
	if found {
		p.pathLength.Observe(float64(pathLen))
	}
}

func (p *PrometheusReporter) FlowDeposited() { p.flowDeposits.Inc() }

func (p *PrometheusReporter) CustomizationRun(d time.Duration) {
	p.customizations.Inc()
	p.customizeTime.Observe(d.Seconds())
}

func (p *PrometheusReporter) StalenessDetected() { p.stalenessEvents.Inc() }

// Package metrics exposes the resolver's Prometheus instrumentation. It is
// ambient observability infrastructure that sits outside the core codec
// and resolution state machine, consulted only by the serve loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal tracks inbound DNS queries handled, by requested type
	// and the rcode returned to the client.
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dnsresolver_queries_total",
		Help: "Total number of inbound DNS queries handled",
	}, []string{"qtype", "rcode"})

	// ResolveDuration tracks how long a full recursive resolution took.
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dnsresolver_resolve_duration_seconds",
		Help:    "Histogram of end-to-end recursive resolution duration",
		Buckets: prometheus.DefBuckets,
	})

	// IterationCount tracks how many hops a resolution took before
	// terminating.
	IterationCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dnsresolver_resolve_iterations",
		Help:    "Histogram of hop count per recursive resolution",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
	})

	// UpstreamFailuresTotal is incremented once for each inbound request
	// whose resolve failed (every root hint returned an error, including
	// the iteration cap being reached). Individual failed upstream queries
	// are not counted on their own.
	UpstreamFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dnsresolver_upstream_failures_total",
		Help: "Total number of upstream query failures during resolution",
	})
)

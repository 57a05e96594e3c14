package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "soloschedule"

// Commit results.
const (
	ResultCommitted   = "committed"
	ResultUnavailable = "unavailable"
	ResultInvalid     = "invalid"
)

var (
	once sync.Once

	Registry = prometheus.NewRegistry()

	slotQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_queries_total",
			Help:      "Slot enumerations by kind and resulting day status.",
		},
		[]string{"kind", "status"},
	)

	commits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Booking and blockout commits by kind and result.",
		},
		[]string{"kind", "result"},
	)

	storeFailovers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failovers_total",
			Help:      "Times the primary store failed and the fallback took over.",
		},
	)
)

// Register registers the collectors on Registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		Registry.MustRegister(slotQueries, commits, storeFailovers)
	})
}

// IncSlotQuery counts one slot enumeration.
func IncSlotQuery(kind, status string) {
	slotQueries.WithLabelValues(kind, status).Inc()
}

// IncCommit counts one commit attempt.
func IncCommit(kind, result string) {
	commits.WithLabelValues(kind, result).Inc()
}

func IncStoreFailover() {
	storeFailovers.Inc()
}

// WriteTextfile dumps the registry for the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CollectionMetrics records activity against user-scoped collections.
type CollectionMetrics struct {
	mutations  *prometheus.CounterVec
	recoveries *prometheus.CounterVec
	lockWait   *prometheus.HistogramVec
}

// NewCollectionMetrics registers the collection metrics on the provided registerer.
func NewCollectionMetrics(reg prometheus.Registerer) *CollectionMetrics {
	if reg == nil {
		return &CollectionMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_mutations_total",
		Help: "Completed read-modify-write cycles per collection and operation.",
	}, []string{"collection", "op"})
	recoveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_recoveries_total",
		Help: "Stored collection values normalized to empty on load.",
	}, []string{"collection", "reason"})
	lockWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collection_lock_wait_seconds",
		Help:    "Time spent waiting for the per-user collection lock.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"collection"})
	reg.MustRegister(mutations, recoveries, lockWait)
	return &CollectionMetrics{
		mutations:  mutations,
		recoveries: recoveries,
		lockWait:   lockWait,
	}
}

// IncMutation counts a persisted mutation.
func (c *CollectionMetrics) IncMutation(collection, op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(collection), normalizeLabel(op)).Inc()
}

// IncRecovery counts a load that fell back to an empty collection.
func (c *CollectionMetrics) IncRecovery(collection, reason string) {
	if c == nil || c.recoveries == nil {
		return
	}
	c.recoveries.WithLabelValues(normalizeLabel(collection), normalizeLabel(reason)).Inc()
}

// ObserveLockWait records how long a mutation waited for its key.
func (c *CollectionMetrics) ObserveLockWait(collection string, wait time.Duration) {
	if c == nil || c.lockWait == nil {
		return
	}
	c.lockWait.WithLabelValues(normalizeLabel(collection)).Observe(wait.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

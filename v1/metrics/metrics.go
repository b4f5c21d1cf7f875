package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// GetCounter tracks the number of read-through Get operations.
	GetCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lfu_get_total",
		Help: "Total number of Get operations",
	})
	// SetCounter tracks the number of write-through Set operations.
	SetCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lfu_set_total",
		Help: "Total number of Set operations",
	})
	// LoadCounter tracks the number of values loaded from the backing store.
	LoadCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lfu_store_loads_total",
		Help: "Total number of values loaded from the backing store",
	})
	// LoadErrorCounter tracks failed backing store lookups.
	LoadErrorCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lfu_store_load_errors_total",
		Help: "Total number of failed backing store lookups",
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterCoreMetrics registers the read-through metrics on the provided registry.
func RegisterCoreMetrics(reg prometheus.Registerer) {
	reg.MustRegister(GetCounter, SetCounter, LoadCounter, LoadErrorCounter)
}

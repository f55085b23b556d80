package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storeOperationsTotal) }

var storeOperationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "Session store operations by backend, operation and result.",
	},
	[]string{"backend", "op", "result"}, // result: ok|error|corrupt
)

func IncStoreOp(backend, op, result string) {
	storeOperationsTotal.WithLabelValues(norm(backend), norm(op), norm(result)).Inc()
}

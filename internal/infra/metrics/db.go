package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storePoolConns) }

// storePoolConns tracks the postgres pool behind the session store,
// sampled after each write.
var storePoolConns = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "store_pg_pool_connections",
		Help: "Connections in the postgres pool behind the session store, by state.",
	},
	[]string{"state"}, // total|idle|acquired
)

func SetStorePoolConns(total, idle, acquired int32) {
	storePoolConns.WithLabelValues("total").Set(float64(total))
	storePoolConns.WithLabelValues("idle").Set(float64(idle))
	storePoolConns.WithLabelValues("acquired").Set(float64(acquired))
}

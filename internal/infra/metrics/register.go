// Package metrics holds the Prometheus collectors for chat sends, remote
// calls and the session store.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu         sync.Mutex
	registered bool
	collectors []prometheus.Collector
)

// register queues collectors from init; nothing is exported until
// MustRegister runs.
func register(cs ...prometheus.Collector) {
	mu.Lock()
	defer mu.Unlock()
	collectors = append(collectors, cs...)
}

// MustRegister exports every queued collector on the default registry.
// Later calls are no-ops.
func MustRegister() {
	mu.Lock()
	defer mu.Unlock()
	if registered {
		return
	}
	registerOn(prometheus.DefaultRegisterer)
	registered = true
}

func registerOn(reg prometheus.Registerer) {
	for _, c := range collectors {
		reg.MustRegister(c)
	}
}

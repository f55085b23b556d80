package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(buildInfo) }

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A constant metric with labels for version, provider and store backend.",
	},
	[]string{"version", "provider", "backend"},
)

func SetBuildInfo(version, provider, backend string) {
	buildInfo.WithLabelValues(version, norm(provider), norm(backend)).Set(1)
}

package probe

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics contains the metric collectors for the prober
type metrics struct {
	up      *prometheus.GaugeVec
	latency *prometheus.HistogramVec
	count   *prometheus.CounterVec
}

// newMetrics initializes metric collectors of the prober
func newMetrics() metrics {
	return metrics{
		up: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "deploywatch_endpoint_up",
				Help: "Health of probed endpoints",
			},
			[]string{
				"endpoint",
			},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "deploywatch_probe_duration_seconds",
				Help: "Probe duration for each endpoint",
			},
			[]string{
				"endpoint",
			},
		),
		count: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deploywatch_probe_count",
				Help: "Amount of probes performed per endpoint",
			},
			[]string{
				"endpoint",
			},
		),
	}
}

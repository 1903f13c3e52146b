package collector

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	PagesFetched   *prometheus.CounterVec
	RateLimitStops *prometheus.CounterVec
}

func (m *Metrics) IncPages(endpoint string) {
	if m == nil || m.PagesFetched == nil {
		return
	}

	m.PagesFetched.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) IncRateLimitStops(endpoint string) {
	if m == nil || m.RateLimitStops == nil {
		return
	}

	m.RateLimitStops.WithLabelValues(endpoint).Inc()
}

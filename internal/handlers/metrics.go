package handlers

import "github.com/prometheus/client_golang/prometheus"

type FeedMetrics struct {
	FeedRequests *prometheus.CounterVec
}

func (m *FeedMetrics) IncFeed(status string) {
	if m == nil || m.FeedRequests == nil {
		return
	}

	m.FeedRequests.WithLabelValues(status).Inc()
}

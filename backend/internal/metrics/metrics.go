// Package metrics holds the forum's domain metrics. HTTP metrics live in
// shared/middleware/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	KindThread = "thread"
	KindReply  = "reply"
)

var (
	PostsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textchan_posts_created_total",
			Help: "Posts written to the store",
		},
		[]string{"kind"},
	)

	PostsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textchan_posts_rejected_total",
			Help: "Posts refused before reaching the store",
		},
		[]string{"kind", "reason"},
	)

	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "textchan_stream_subscribers",
			Help: "Open /api/threads/stream connections",
		},
	)

	StorageUsageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "textchan_storage_usage_bytes",
			Help: "Bytes used by the store at the last capacity check",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textchan_events_dropped_total",
			Help: "Change notifications dropped for slow subscribers",
		},
	)
)

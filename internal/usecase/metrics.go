package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_saved_total",
			Help: "Total number of lead save attempts",
		},
		[]string{"flow", "outcome"},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of operator notifications",
		},
		[]string{"kind", "outcome"},
	)

	throttledEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "throttled_events_total",
			Help: "Total number of inbound events rejected by the throttle",
		},
	)
)

func recordLeadSave(flow, outcome string) {
	leadsSaved.WithLabelValues(flow, outcome).Inc()
}

func recordNotification(kind, outcome string) {
	notificationsSent.WithLabelValues(kind, outcome).Inc()
}

func recordThrottled() {
	throttledEvents.Inc()
}

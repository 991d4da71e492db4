// Package metrics holds the relay's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsActive     prometheus.Gauge
	MessagesRouted     prometheus.Counter
	SendsRejected      *prometheus.CounterVec
	HistoryFetches     prometheus.Counter
	PresenceBroadcasts prometheus.Counter
	DeliveriesDropped  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relay_sessions_active",
			Help: "Live WebSocket sessions currently registered.",
		}),
		MessagesRouted: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_messages_routed_total",
			Help: "Messages accepted, stored and fanned out.",
		}),
		SendsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_sends_rejected_total",
			Help: "Rejected sends by reason.",
		}, []string{"reason"}),
		HistoryFetches: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_history_fetches_total",
			Help: "Conversation history requests served.",
		}),
		PresenceBroadcasts: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_presence_broadcasts_total",
			Help: "Full presence-set broadcasts sent to sessions.",
		}),
		DeliveriesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_deliveries_dropped_total",
			Help: "Frames dropped because a session buffer was full.",
		}),
	}
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yijinjing",
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected WebSocket clients",
		},
	)

	StreamEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yijinjing",
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Events fanned out to subscribers by outcome",
		},
		[]string{"type", "outcome"},
	)

	RelayMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yijinjing",
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Broker messages relayed to the local hub by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds the stream collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(StreamClients, StreamEvents, RelayMessages)
	})
}

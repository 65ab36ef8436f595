package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RelayMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_messages_total", Help: "Relay messages handled"},
		[]string{"kind", "outcome"},
	)
	RelayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_handle_duration_seconds",
			Help:    "Relay message handling duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "relay_in_flight_messages", Help: "In-flight relay messages"},
	)
	SessionRestoreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "session_restore_total", Help: "Session restoration attempts"},
		[]string{"tier", "outcome"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RelayMessagesTotal, RelayDuration, InFlight, SessionRestoreTotal)
}

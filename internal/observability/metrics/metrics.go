package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// notificationsTotal counts notifications sent, labelled by kind:
	// new_task|status|executor|done|comment|approval.
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgbot_notifications_total",
			Help: "Notifications sent by type",
		},
		[]string{"type"},
	)

	// apiErrorsTotal counts absorbed errors, labelled by call site.
	apiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgbot_api_errors_total",
			Help: "API errors encountered",
		},
		[]string{"where"},
	)

	// cycleSeconds observes the duration of each full background sweep.
	cycleSeconds = promauto.NewSummary(
		prometheus.SummaryOpts{
			Name: "tgbot_background_cycle_seconds",
			Help: "Background cycle duration in seconds",
		},
	)

	// sessionsGauge tracks the number of active chat sessions.
	sessionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tgbot_sessions",
			Help: "Number of active sessions",
		},
	)

	// janitorPrunedTotal counts records removed by the cache janitor,
	// labelled by kind: preferences|cache.
	janitorPrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgbot_janitor_pruned_total",
			Help: "Orphaned records removed by the cache janitor",
		},
		[]string{"kind"},
	)
)

// IncNotification increments the notification counter for a kind.
func IncNotification(kind string) {
	notificationsTotal.WithLabelValues(kind).Inc()
}

// IncAPIError increments the API error counter for a call site.
func IncAPIError(where string) {
	apiErrorsTotal.WithLabelValues(where).Inc()
}

// ObserveCycle records the duration of a background cycle in seconds.
func ObserveCycle(seconds float64) {
	cycleSeconds.Observe(seconds)
}

// SetSessions sets the active-session gauge.
func SetSessions(count int) {
	sessionsGauge.Set(float64(count))
}

// IncJanitorPruned increments the janitor prune counter for a record kind.
func IncJanitorPruned(kind string) {
	janitorPrunedTotal.WithLabelValues(kind).Inc()
}

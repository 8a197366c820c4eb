// Package metrics holds the worker's Prometheus metric families and
// thin recording helpers around them.
//
// Families:
//   - tgbot_notifications_total{type}: notifications sent by kind
//   - tgbot_api_errors_total{where}: absorbed errors by call site
//   - tgbot_background_cycle_seconds: sweep duration summary
//   - tgbot_sessions: active chat sessions gauge
//   - tgbot_janitor_pruned_total{kind}: records removed by the janitor
//
// All families are registered with the default registry via promauto and
// exposed by the ops server's /metrics endpoint.
//
// Example usage:
//
//	if err := send(msg); err == nil {
//	    metrics.IncNotification("status")
//	}
package metrics

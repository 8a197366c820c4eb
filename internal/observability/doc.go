// Package observability groups the worker's observability
// infrastructure: structured logging and Prometheus metrics.
//
// Subpackages:
//   - logging: slog construction helpers (JSON and text output)
//   - metrics: the Prometheus metric families and recording helpers
//
// Example usage:
//
//	import (
//	    "helpdesk-notify/internal/observability/logging"
//	    "helpdesk-notify/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("worker started")
//
//	    metrics.IncNotification("comment")
//	}
package observability

// Package logging constructs the process-wide structured logger on top
// of the standard library's log/slog.
//
// The JSON handler is the production default; the text handler exists
// for local runs. The level comes from the LOG_LEVEL environment
// variable (debug, info, warn, error), defaulting to info.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//	logger.Info("worker started", slog.Int("ops_port", 9090))
package logging

package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	pkgconfig "helpdesk-notify/pkg/config"
)

// Config controls the background polling loop and its ops HTTP server.
//
// All fields have defaults suitable for a single-instance deployment;
// LoadConfigFromEnv warns and falls back to the default on any invalid
// environment value, so a misconfigured variable can never keep the
// worker from starting.
type Config struct {
	// PollInterval is the pause between background sweeps. The loop is
	// sleep-driven, not cron-driven: a slow sweep delays the next one
	// instead of overlapping it.
	// Default: 60s.
	PollInterval time.Duration

	// ChatDelay is the pause between consecutive chats inside one
	// sweep, spreading upstream load across the interval.
	// Default: 50ms.
	ChatDelay time.Duration

	// CycleBackoff is the pause after a sweep fails at the cycle level
	// (for example, unreadable session storage).
	// Default: 10s.
	CycleBackoff time.Duration

	// JanitorSchedule is the cron expression for the nightly state
	// janitor that prunes preference and cache records whose session
	// is gone.
	// Default: "0 4 * * *" (daily at 04:00).
	JanitorSchedule string

	// OpsPort is the port for the /metrics and /health endpoints.
	// Range: 1024-65535.
	// Default: 9090.
	OpsPort int
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:    60 * time.Second,
		ChatDelay:       50 * time.Millisecond,
		CycleBackoff:    10 * time.Second,
		JanitorSchedule: "0 4 * * *",
		OpsPort:         9090,
	}
}

// Validate checks the configuration, collecting all violations into one
// error.
func (c *Config) Validate() error {
	var errs []error

	if err := pkgconfig.ValidatePositiveDuration(c.PollInterval); err != nil {
		errs = append(errs, fmt.Errorf("PollInterval: %w", err))
	}
	if c.ChatDelay < 0 {
		errs = append(errs, fmt.Errorf("ChatDelay must not be negative, got %v", c.ChatDelay))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.CycleBackoff); err != nil {
		errs = append(errs, fmt.Errorf("CycleBackoff: %w", err))
	}
	if _, err := cron.ParseStandard(c.JanitorSchedule); err != nil {
		errs = append(errs, fmt.Errorf("JanitorSchedule: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.OpsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("OpsPort: %w", err))
	}

	return errors.Join(errs...)
}

// LoadConfigFromEnv builds a Config from the environment, falling back
// to defaults field by field. The returned config is always valid.
func LoadConfigFromEnv(logger *slog.Logger) Config {
	def := DefaultConfig()
	cfg := Config{
		PollInterval:    time.Duration(pkgconfig.GetEnvInt("BACKGROUND_POLL_INTERVAL_SEC", int(def.PollInterval/time.Second))) * time.Second,
		ChatDelay:       pkgconfig.GetEnvDuration("BACKGROUND_CHAT_DELAY", def.ChatDelay),
		CycleBackoff:    pkgconfig.GetEnvDuration("BACKGROUND_CYCLE_BACKOFF", def.CycleBackoff),
		JanitorSchedule: pkgconfig.GetEnvString("JANITOR_SCHEDULE", def.JanitorSchedule),
		OpsPort:         pkgconfig.GetEnvInt("METRICS_PORT", def.OpsPort),
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn("invalid worker configuration, using defaults for invalid fields",
			slog.Any("error", err))
		cfg = repairConfig(cfg, def)
	}
	return cfg
}

// repairConfig replaces each invalid field with its default.
func repairConfig(cfg, def Config) Config {
	if pkgconfig.ValidatePositiveDuration(cfg.PollInterval) != nil {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ChatDelay < 0 {
		cfg.ChatDelay = def.ChatDelay
	}
	if pkgconfig.ValidatePositiveDuration(cfg.CycleBackoff) != nil {
		cfg.CycleBackoff = def.CycleBackoff
	}
	if _, err := cron.ParseStandard(cfg.JanitorSchedule); err != nil {
		cfg.JanitorSchedule = def.JanitorSchedule
	}
	if pkgconfig.ValidateIntRange(cfg.OpsPort, 1024, 65535) != nil {
		cfg.OpsPort = def.OpsPort
	}
	return cfg
}

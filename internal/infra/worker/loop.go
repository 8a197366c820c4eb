// Package worker drives the background notification machinery: the
// sleep-driven polling loop that sweeps every registered chat, the
// nightly state janitor, and the ops HTTP server exposing metrics and
// health probes.
package worker

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"helpdesk-notify/internal/domain/entity"
	"helpdesk-notify/internal/observability/metrics"
)

// Engine runs one notification cycle for a single chat.
type Engine interface {
	CheckUser(ctx context.Context, chatID int64) error
}

// SessionSource enumerates the chats with an authenticated session.
type SessionSource interface {
	AllSessions() (map[int64]entity.Session, error)
}

// Loop is the background sweep loop. Sweeps never overlap: each sweep
// runs to completion, then the loop sleeps for the poll interval. A
// chat-level failure is logged and the sweep moves on; only a failure
// to enumerate sessions aborts the sweep, after which the loop backs
// off and retries.
type Loop struct {
	engine   Engine
	sessions SessionSource
	cfg      Config
	logger   *slog.Logger

	onFirstSweep func()
	sweptOnce    bool
}

// NewLoop creates the background loop.
func NewLoop(engine Engine, sessions SessionSource, cfg Config, logger *slog.Logger) *Loop {
	return &Loop{
		engine:   engine,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// OnFirstSweep registers a callback invoked once, after the first sweep
// completes without a cycle-level error. Used to flip the readiness
// probe. Must be called before Run.
func (l *Loop) OnFirstSweep(f func()) {
	l.onFirstSweep = f
}

// Run executes sweeps until the context is cancelled. It returns the
// context error on shutdown.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("background loop starting",
		slog.Duration("poll_interval", l.cfg.PollInterval))

	for {
		pause := l.cfg.PollInterval
		if err := l.sweep(ctx); err == nil {
			if !l.sweptOnce {
				l.sweptOnce = true
				if l.onFirstSweep != nil {
					l.onFirstSweep()
				}
			}
		} else {
			if ctx.Err() != nil {
				l.logger.Info("background loop stopping")
				return ctx.Err()
			}
			metrics.IncAPIError("background")
			l.logger.Error("background sweep failed", slog.Any("error", err))
			pause = l.cfg.CycleBackoff
		}

		if err := sleepCtx(ctx, pause); err != nil {
			l.logger.Info("background loop stopping")
			return err
		}
	}
}

// sweep runs one notification cycle over every chat with a session, in
// ascending chat-id order for deterministic behavior.
func (l *Loop) sweep(ctx context.Context) error {
	start := time.Now()
	log := l.logger.With(slog.String("cycle_id", uuid.NewString()))

	sessions, err := l.sessions.AllSessions()
	if err != nil {
		return err
	}
	metrics.SetSessions(len(sessions))

	chatIDs := make([]int64, 0, len(sessions))
	for chatID := range sessions {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })

	for _, chatID := range chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.engine.CheckUser(ctx, chatID); err != nil {
			metrics.IncAPIError("user_loop")
			log.Warn("chat sweep failed",
				slog.Int64("chat_id", chatID),
				slog.Any("error", err))
		}
		if err := sleepCtx(ctx, l.cfg.ChatDelay); err != nil {
			return err
		}
	}

	metrics.ObserveCycle(time.Since(start).Seconds())
	log.Info("sweep complete",
		slog.Int("chats", len(chatIDs)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

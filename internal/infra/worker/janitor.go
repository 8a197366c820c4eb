package worker

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"helpdesk-notify/internal/domain/entity"
	"helpdesk-notify/internal/observability/metrics"
)

// JanitorStore is the janitor's view of the persistent state: the set
// of live sessions plus enumeration and deletion of the dependent
// records.
type JanitorStore interface {
	SessionSource
	PreferenceChatIDs() ([]int64, error)
	CacheChatIDs() ([]int64, error)
	DeletePreferences(chatID int64) error
	DeleteCache(chatID int64) error
}

// Janitor prunes preference and cache records left behind by logged-out
// chats. Without it the state files grow forever: logout removes only
// the session.
type Janitor struct {
	store  JanitorStore
	logger *slog.Logger
}

// NewJanitor creates a janitor over the given store.
func NewJanitor(store JanitorStore, logger *slog.Logger) *Janitor {
	return &Janitor{store: store, logger: logger}
}

// Schedule registers the janitor on the given cron runner with the
// given standard cron expression.
func (j *Janitor) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, j.Run)
}

// Run performs one pruning pass. Errors are logged and the pass
// continues; a failed deletion is retried naturally on the next pass.
func (j *Janitor) Run() {
	sessions, err := j.store.AllSessions()
	if err != nil {
		j.logger.Error("janitor: could not enumerate sessions", slog.Any("error", err))
		return
	}

	pruned := 0
	pruned += j.pruneOrphans("preferences", j.store.PreferenceChatIDs, j.store.DeletePreferences, sessions)
	pruned += j.pruneOrphans("cache", j.store.CacheChatIDs, j.store.DeleteCache, sessions)

	j.logger.Info("janitor pass complete",
		slog.Int("sessions", len(sessions)),
		slog.Int("pruned", pruned))
}

// pruneOrphans deletes every record of one kind whose chat has no
// session, returning the number pruned.
func (j *Janitor) pruneOrphans(kind string, list func() ([]int64, error), remove func(int64) error, sessions map[int64]entity.Session) int {
	chatIDs, err := list()
	if err != nil {
		j.logger.Error("janitor: could not enumerate records",
			slog.String("kind", kind),
			slog.Any("error", err))
		return 0
	}

	pruned := 0
	for _, chatID := range chatIDs {
		if _, ok := sessions[chatID]; ok {
			continue
		}
		if err := remove(chatID); err != nil {
			j.logger.Warn("janitor: could not delete record",
				slog.String("kind", kind),
				slog.Int64("chat_id", chatID),
				slog.Any("error", err))
			continue
		}
		metrics.IncJanitorPruned(kind)
		pruned++
	}
	return pruned
}

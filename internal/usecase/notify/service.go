// Package notify implements the helpdesk notification engine: the
// per-chat differential detectors that turn upstream ticket state into
// chat messages. The engine's only memory is the per-chat notification
// cache; each cycle reads the cache, runs the detectors in a fixed
// order, emits messages through the chat transport, and persists the
// updated cache in a single write.
package notify

import (
	"context"
	"log/slog"

	"helpdesk-notify/internal/domain/entity"
	"helpdesk-notify/internal/observability/metrics"
)

// Per-cycle work bounds. Together with the comment rotation window they
// cap the upstream and downstream load one chat can generate in a cycle.
const (
	maxNewTicketNotices = 20
	maxStatusNotices    = 5
	maxClosureDetails   = 10
	commentWindow       = 10
	maxCommentNotices   = 3
	maxApprovalNotices  = 30
)

// Metric labels for notification kinds.
const (
	kindNewTask  = "new_task"
	kindStatus   = "status"
	kindExecutor = "executor"
	kindDone     = "done"
	kindComment  = "comment"
	kindApproval = "approval"
)

// Metric labels for upstream call sites.
const (
	siteOpenByCreator = "open_by_creator"
	siteOpenByAnyRole = "open_by_any_role"
	siteApprovals     = "approvals"
	siteTaskDetails   = "task_details"
	siteTaskComments  = "task_comments"
	siteTaskLifetime  = "task_lifetime"
	siteNotifyDone    = "notify_done"
	siteFindUser      = "find_user"
)

// HelpdeskAPI is the engine's view of the upstream ticketing client.
type HelpdeskAPI interface {
	OpenTicketsByCreator(ctx context.Context, userID int64) ([]entity.Ticket, error)
	OpenTicketsByAnyRole(ctx context.Context, userID int64) ([]entity.Ticket, error)
	TicketsAwaitingApproval(ctx context.Context, userID int64) ([]entity.Ticket, error)
	TicketDetails(ctx context.Context, ticketID int64) (*entity.TicketDetails, error)
	TicketComments(ctx context.Context, ticketID int64) ([]entity.Comment, error)
	TicketLifetime(ctx context.Context, ticketID int64) ([]entity.Comment, error)
	FindUser(ctx context.Context, userID int64) (*entity.User, error)
}

// StateStore is the engine's view of the persistent per-chat state.
type StateStore interface {
	Session(chatID int64) (*entity.Session, error)
	Preferences(chatID int64) (entity.Preferences, error)
	Cache(chatID int64) (*entity.NotificationCache, error)
	PutCache(chatID int64, cache *entity.NotificationCache) error
}

// Sender is the downstream chat transport. A send failure is logged and
// absorbed; the engine never retries a send.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]entity.Button) error
}

// Service is the notification engine. One instance serves all chats;
// per-chat state is confined to the cache, so the only shared mutable
// state is the user-name resolver, which is internally synchronized.
type Service struct {
	api      HelpdeskAPI
	store    StateStore
	sender   Sender
	resolver *NameResolver
	webBase  string
	logger   *slog.Logger
}

// NewService creates the engine.
func NewService(api HelpdeskAPI, store StateStore, sender Sender, webBase string, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		store:    store,
		sender:   sender,
		resolver: NewNameResolver(api),
		webBase:  webBase,
		logger:   logger,
	}
}

// CheckUser runs one notification cycle for a single chat: reads the
// session, preferences, and cache, runs the detectors in order
// (new-ticket, status/executor, closure, comment, approval), and
// persists the updated cache in one write. A chat without a session is
// skipped. Upstream failures are absorbed per signal: the affected
// detector is skipped this cycle and an api_error metric is recorded.
func (s *Service) CheckUser(ctx context.Context, chatID int64) error {
	session, err := s.store.Session(chatID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	prefs, err := s.store.Preferences(chatID)
	if err != nil {
		// Preferences are advisory; fall back to the defaults rather
		// than silencing the chat.
		s.logger.Warn("could not read preferences, using defaults",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
		prefs = entity.DefaultPreferences()
	}

	cache, err := s.store.Cache(chatID)
	if err != nil {
		return err
	}
	firstRun := !cache.Initialized

	userID := session.UpstreamUserID
	log := s.logger.With(slog.Int64("chat_id", chatID), slog.Int64("user_id", userID))

	openByCreator, creatorErr := s.api.OpenTicketsByCreator(ctx, userID)
	if creatorErr != nil {
		metrics.IncAPIError(siteOpenByCreator)
		log.Warn("open tickets by creator unavailable", slog.Any("error", creatorErr))
	}

	openByAnyRole, anyRoleErr := s.api.OpenTicketsByAnyRole(ctx, userID)
	if anyRoleErr != nil {
		metrics.IncAPIError(siteOpenByAnyRole)
		log.Warn("open tickets by any role unavailable", slog.Any("error", anyRoleErr))
	}

	if creatorErr == nil {
		if firstRun {
			s.seedInitialState(ctx, log, openByCreator, cache)
		} else {
			s.detectNewTickets(ctx, log, chatID, openByCreator, cache, prefs)
			s.detectStatusExecutor(ctx, log, chatID, openByCreator, cache, prefs)
			if anyRoleErr == nil {
				s.detectClosures(ctx, log, chatID, openByCreator, openByAnyRole, cache, prefs)
			}
		}
	}

	// Skipped on the seeding cycle: the baselines were fetched moments
	// ago and a moving comment frontier must not leak a notification.
	if !firstRun && anyRoleErr == nil {
		s.detectComments(ctx, log, chatID, openByAnyRole, cache, prefs)
	}

	approvalTickets, approvalsErr := s.api.TicketsAwaitingApproval(ctx, userID)
	if approvalsErr != nil {
		metrics.IncAPIError(siteApprovals)
		log.Warn("approval tickets unavailable", slog.Any("error", approvalsErr))
	} else {
		s.detectApprovals(ctx, log, chatID, userID, approvalTickets, cache, prefs, firstRun)
	}

	return s.store.PutCache(chatID, cache)
}

// send delivers one message, logging and absorbing transport failures.
// It returns true when the send succeeded so callers can count emitted
// notifications.
func (s *Service) send(ctx context.Context, log *slog.Logger, chatID int64, text string, keyboard [][]entity.Button) bool {
	if err := s.sender.SendMessage(ctx, chatID, text, keyboard); err != nil {
		log.Warn("chat send failed", slog.Any("error", err))
		return false
	}
	return true
}

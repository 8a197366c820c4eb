package notify

import (
	"context"
	"log/slog"
	"strconv"

	"helpdesk-notify/internal/domain/entity"
	"helpdesk-notify/internal/observability/metrics"
)

// seedInitialState handles the first successful cycle for a chat: every
// open ticket gets a shadow mirroring current upstream state, no
// notifications are emitted, and the cache flips to initialized. A
// freshly authenticated user must never be blasted with historical
// events.
func (s *Service) seedInitialState(ctx context.Context, log *slog.Logger, openByCreator []entity.Ticket, cache *entity.NotificationCache) {
	for i := range openByCreator {
		t := &openByCreator[i]
		cache.Tickets[t.Key()] = s.seedShadow(ctx, t)
	}
	cache.Initialized = true
	log.Info("notification cache initialized", slog.Int("tickets", len(openByCreator)))
}

// seedShadow builds a shadow for a ticket, seeding the comment baseline
// from the details endpoint. A failed detail fetch leaves the baseline
// empty; the comment detector reseeds it silently.
func (s *Service) seedShadow(ctx context.Context, t *entity.Ticket) *entity.TicketShadow {
	shadow := entity.ShadowOf(t)
	details, err := s.api.TicketDetails(ctx, t.ID)
	if err != nil {
		metrics.IncAPIError(siteTaskDetails)
		return shadow
	}
	shadow.LastCommentIDs = lastFingerprints(details.Comments)
	return shadow
}

// detectNewTickets notifies about tickets present upstream but absent
// from the cache. All such tickets are seeded; at most
// maxNewTicketNotices are announced, in the order returned upstream.
func (s *Service) detectNewTickets(ctx context.Context, log *slog.Logger, chatID int64, openByCreator []entity.Ticket, cache *entity.NotificationCache, prefs entity.Preferences) {
	announced := 0
	for i := range openByCreator {
		t := &openByCreator[i]
		if _, ok := cache.Tickets[t.Key()]; ok {
			continue
		}
		// Seed before emitting: a lost send must not resurface the
		// ticket as new next cycle.
		cache.Tickets[t.Key()] = s.seedShadow(ctx, t)

		if !prefs.NewTicket || announced >= maxNewTicketNotices {
			continue
		}
		announced++
		if s.send(ctx, log, chatID, formatNewTicket(t), s.openLinkKeyboard(t.ID)) {
			metrics.IncNotification(kindNewTask)
		}
	}
}

// detectStatusExecutor notifies about status and executor transitions on
// tickets the user authored. Status notices are capped per cycle;
// shadows of capped transitions are left untouched so the transition
// surfaces next cycle. Executor transitions are uncapped.
func (s *Service) detectStatusExecutor(ctx context.Context, log *slog.Logger, chatID int64, openByCreator []entity.Ticket, cache *entity.NotificationCache, prefs entity.Preferences) {
	statusSent := 0
	for i := range openByCreator {
		t := &openByCreator[i]
		shadow, ok := cache.Tickets[t.Key()]
		if !ok {
			continue
		}

		switch {
		case shadow.StatusID == nil || *shadow.StatusID == t.StatusID:
			writeStatus(shadow, t)
		case !prefs.Status:
			// A disabled toggle must not defer the write-back forever.
			writeStatus(shadow, t)
		case statusSent < maxStatusNotices:
			statusSent++
			if s.send(ctx, log, chatID, formatStatusChange(t, shadow), nil) {
				metrics.IncNotification(kindStatus)
			}
			writeStatus(shadow, t)
		default:
			// Cap reached: keep the stale shadow so the transition is
			// re-detected and announced next cycle.
		}

		executorChanged := shadow.ExecutorID != nil && !sameExecutor(shadow.ExecutorID, t.ExecutorID)
		if executorChanged && prefs.Executor {
			if s.send(ctx, log, chatID, formatExecutorChange(t, shadow), nil) {
				metrics.IncNotification(kindExecutor)
			}
		}
		writeExecutor(shadow, t)
		shadow.Name = t.Name
	}
}

// detectClosures reconciles shadows of tickets that are no longer open
// in either upstream view. The first maxClosureDetails get a detail
// fetch and a "done" notice; the rest are dropped silently to bound the
// cost of bulk closures. Shadows are removed whether or not the notice
// was sent, including on detail-fetch failure.
func (s *Service) detectClosures(ctx context.Context, log *slog.Logger, chatID int64, openByCreator, openByAnyRole []entity.Ticket, cache *entity.NotificationCache, prefs entity.Preferences) {
	stillOpen := make(map[string]bool, len(openByCreator)+len(openByAnyRole))
	for i := range openByCreator {
		stillOpen[openByCreator[i].Key()] = true
	}
	for i := range openByAnyRole {
		stillOpen[openByAnyRole[i].Key()] = true
	}

	detailed := 0
	for _, key := range cache.SortedTicketKeys() {
		if stillOpen[key] {
			continue
		}
		delete(cache.Tickets, key)

		if detailed >= maxClosureDetails {
			continue
		}
		detailed++

		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		details, err := s.api.TicketDetails(ctx, id)
		if err != nil {
			metrics.IncAPIError(siteNotifyDone)
			continue
		}
		if !prefs.Done {
			continue
		}
		if s.send(ctx, log, chatID, formatClosure(id, &details.Ticket), nil) {
			metrics.IncNotification(kindDone)
		}
	}
}

// writeStatus mirrors the ticket's current status into the shadow.
func writeStatus(shadow *entity.TicketShadow, t *entity.Ticket) {
	cur := t.StatusID
	shadow.StatusID = &cur
	shadow.StatusName = t.StatusName
}

// writeExecutor mirrors the ticket's current executor into the shadow.
func writeExecutor(shadow *entity.TicketShadow, t *entity.Ticket) {
	if t.ExecutorID != nil {
		cur := *t.ExecutorID
		shadow.ExecutorID = &cur
	} else {
		shadow.ExecutorID = nil
	}
	shadow.ExecutorName = t.ExecutorName
}

func sameExecutor(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

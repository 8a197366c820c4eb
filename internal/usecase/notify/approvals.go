package notify

import (
	"context"
	"log/slog"

	"helpdesk-notify/internal/domain/entity"
	"helpdesk-notify/internal/observability/metrics"
)

// detectApprovals announces tickets newly awaiting the user's
// coordination. The cached approval set is replaced wholesale before
// any message goes out, so a crash mid-send never replays the batch; a
// ticket approved and re-submitted reappears because it leaves the set
// in between. On the first run the set is seeded silently.
func (s *Service) detectApprovals(ctx context.Context, log *slog.Logger, chatID, userID int64, approvalTickets []entity.Ticket, cache *entity.NotificationCache, prefs entity.Preferences, firstRun bool) {
	pending := make([]entity.Ticket, 0, len(approvalTickets))
	keys := make([]string, 0, len(approvalTickets))
	for i := range approvalTickets {
		t := &approvalTickets[i]
		if t.AwaitsCoordinationBy(userID) {
			pending = append(pending, *t)
			keys = append(keys, t.Key())
		}
	}

	fresh := make([]entity.Ticket, 0, len(pending))
	if !firstRun {
		for i := range pending {
			if !cache.HasApproval(pending[i].Key()) {
				fresh = append(fresh, pending[i])
			}
		}
	}
	cache.SetApprovals(keys)
	if firstRun || !prefs.Approval {
		return
	}

	for i := range fresh {
		if i >= maxApprovalNotices {
			break
		}
		t := &fresh[i]
		if s.send(ctx, log, chatID, formatApproval(t), s.approvalKeyboard(t.ID)) {
			metrics.IncNotification(kindApproval)
		}
	}
}

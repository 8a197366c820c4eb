package notify

import (
	"context"
	"log/slog"
	"sort"

	"helpdesk-notify/internal/domain/entity"
	"helpdesk-notify/internal/observability/metrics"
)

// detectComments polls a rotating window of the anyRole ticket list for
// fresh comments. Fetch failures skip the ticket without advancing its
// baseline; an empty baseline is reseeded silently. At most
// maxCommentNotices comments are announced per ticket, newest last.
func (s *Service) detectComments(ctx context.Context, log *slog.Logger, chatID int64, openByAnyRole []entity.Ticket, cache *entity.NotificationCache, prefs entity.Preferences) {
	for _, i := range cache.RotationWindow(entity.RotationComment, len(openByAnyRole), commentWindow) {
		t := &openByAnyRole[i]

		comments, ok := s.fetchComments(ctx, t.ID)
		if !ok {
			continue
		}

		key := t.Key()
		shadow, exists := cache.Tickets[key]
		if !exists {
			// Visible through a non-creator role only: shadow it so
			// its comments are tracked, but never announce backlog.
			shadow = entity.ShadowOf(t)
			shadow.LastCommentIDs = lastFingerprints(comments)
			cache.Tickets[key] = shadow
			continue
		}
		if len(shadow.LastCommentIDs) == 0 {
			shadow.LastCommentIDs = lastFingerprints(comments)
			continue
		}

		seen := make(map[string]bool, len(shadow.LastCommentIDs))
		for _, fp := range shadow.LastCommentIDs {
			seen[fp] = true
		}
		fresh := make([]entity.Comment, 0, len(comments))
		for j := range comments {
			if !seen[comments[j].Fingerprint()] {
				fresh = append(fresh, comments[j])
			}
		}
		sortCommentsAscending(fresh)
		if len(fresh) > maxCommentNotices {
			fresh = fresh[len(fresh)-maxCommentNotices:]
		}

		if prefs.Comment {
			for j := range fresh {
				c := &fresh[j]
				text := formatComment(t.ID, s.commentAuthor(ctx, c), c.Body)
				if s.send(ctx, log, chatID, text, nil) {
					metrics.IncNotification(kindComment)
				}
			}
		}

		shadow.LastCommentIDs = lastFingerprints(comments)
	}
}

// fetchComments tries the comment sources in order of fidelity: details
// embedding, the dedicated comments endpoint, then the lifetime feed.
// The first non-empty result wins. The second return is false only when
// every source failed; three empty answers are a legitimate empty
// frontier.
func (s *Service) fetchComments(ctx context.Context, ticketID int64) ([]entity.Comment, bool) {
	failures := 0

	if details, err := s.api.TicketDetails(ctx, ticketID); err != nil {
		metrics.IncAPIError(siteTaskDetails)
		failures++
	} else if len(details.Comments) > 0 {
		return details.Comments, true
	}

	if comments, err := s.api.TicketComments(ctx, ticketID); err != nil {
		metrics.IncAPIError(siteTaskComments)
		failures++
	} else if len(comments) > 0 {
		return comments, true
	}

	if events, err := s.api.TicketLifetime(ctx, ticketID); err != nil {
		metrics.IncAPIError(siteTaskLifetime)
		failures++
	} else if len(events) > 0 {
		return events, true
	}

	return nil, failures < 3
}

// commentAuthor resolves a display name for a comment, falling back to
// a user-id lookup and finally a placeholder.
func (s *Service) commentAuthor(ctx context.Context, c *entity.Comment) string {
	if c.Author != "" {
		return c.Author
	}
	if c.AuthorID != 0 {
		if name := s.resolver.Resolve(ctx, c.AuthorID); name != "" {
			return name
		}
	}
	return "Someone"
}

// lastFingerprints returns the fingerprints of the newest
// SeedCommentLimit comments, oldest first.
func lastFingerprints(comments []entity.Comment) []string {
	ordered := append([]entity.Comment(nil), comments...)
	sortCommentsAscending(ordered)
	if len(ordered) > entity.SeedCommentLimit {
		ordered = ordered[len(ordered)-entity.SeedCommentLimit:]
	}
	return entity.Fingerprints(ordered)
}

// sortCommentsAscending orders comments by upstream id, oldest first.
// Comments without an id sort before all identified ones, preserving
// their relative order.
func sortCommentsAscending(comments []entity.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
}

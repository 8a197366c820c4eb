// Package entity defines the core domain entities for the helpdesk
// notification system: upstream tickets and users, chat sessions,
// notification preferences, and the per-chat differential cache.
package entity

import (
	"strconv"
	"strings"
)

// Upstream status identifiers. The open set covers "new, open,
// in-progress, waiting"; the closed set covers "completed, done,
// rejected"; StatusApproval is the coordination state.
var (
	OpenStatusIDs   = []int64{27, 31, 35, 44}
	ClosedStatusIDs = []int64{28, 29, 30}
)

const StatusApproval int64 = 36

// Ticket represents a unit of work in the upstream helpdesk system.
// Field names mirror the upstream JSON scheme.
type Ticket struct {
	ID           int64  `json:"Id"`
	Name         string `json:"Name"`
	Description  string `json:"Description"`
	StatusID     int64  `json:"StatusId"`
	StatusName   string `json:"StatusName"`
	ExecutorID   *int64 `json:"ExecutorId"`
	ExecutorName string `json:"ExecutorName"`
	CreatorID    int64  `json:"CreatorId"`
	CreatorName  string `json:"CreatorName"`
	CreateDate   string `json:"CreateDate"`
	PlanEndDate  string `json:"PlanEndDate"`

	// Coordination fields: comma-separated coordinator user ids and,
	// aligned by position, comma-separated "already coordinated" flags.
	CoordinatorIDs               string `json:"CoordinatorIds"`
	IsCoordinatedForCoordinators string `json:"IsCoordinatedForCoordinators"`
}

// Key returns the ticket id rendered as a string, the form used for all
// cache keys.
func (t *Ticket) Key() string {
	return strconv.FormatInt(t.ID, 10)
}

// AwaitsCoordinationBy reports whether userID appears in CoordinatorIDs
// with an aligned coordination flag that is not "true". A coordinator
// beyond the end of the flag list counts as not yet coordinated.
func (t *Ticket) AwaitsCoordinationBy(userID int64) bool {
	ids := splitCSV(t.CoordinatorIDs)
	flags := splitCSV(t.IsCoordinatedForCoordinators)
	want := strconv.FormatInt(userID, 10)
	for i, id := range ids {
		if id != want {
			continue
		}
		if i < len(flags) && strings.EqualFold(flags[i], "true") {
			return false
		}
		return true
	}
	return false
}

// TicketDetails is a ticket fetched individually, together with
// whatever comments the details endpoint embedded.
type TicketDetails struct {
	Ticket   Ticket
	Comments []Comment
}

// splitCSV splits a comma-separated upstream list, trimming whitespace
// and dropping empty elements.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

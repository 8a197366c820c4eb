package helpdesk

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"helpdesk-notify/internal/domain/entity"
)

type tasksResponse struct {
	Tasks []entity.Ticket `json:"Tasks"`
}

// OpenTicketsByCreator lists tickets created by userID whose status is
// in the open set.
func (c *Client) OpenTicketsByCreator(ctx context.Context, userID int64) ([]entity.Ticket, error) {
	return c.listTickets(ctx, url.Values{
		"creatorids": {strconv.FormatInt(userID, 10)},
		"statusids":  {joinStatusIDs(entity.OpenStatusIDs)},
		"count":      {"false"},
	})
}

// OpenTicketsByAnyRole lists open tickets where userID participates in
// any role: creator, executor, or observer. The comment detector uses
// this view so comments on tickets the user only executes or observes
// are still seen.
func (c *Client) OpenTicketsByAnyRole(ctx context.Context, userID int64) ([]entity.Ticket, error) {
	return c.listTickets(ctx, url.Values{
		"memberids": {strconv.FormatInt(userID, 10)},
		"statusids": {joinStatusIDs(entity.OpenStatusIDs)},
		"count":     {"false"},
	})
}

// ClosedTicketsByCreator lists tickets created by userID whose status is
// in the closed set.
func (c *Client) ClosedTicketsByCreator(ctx context.Context, userID int64) ([]entity.Ticket, error) {
	return c.listTickets(ctx, url.Values{
		"creatorids": {strconv.FormatInt(userID, 10)},
		"statusids":  {joinStatusIDs(entity.ClosedStatusIDs)},
		"count":      {"false"},
	})
}

// TicketsAwaitingApproval lists tickets in the approval status scoped to
// userID as coordinator. The per-coordinator "already coordinated" check
// is performed by the caller over CoordinatorIds and
// IsCoordinatedForCoordinators; the upstream filter alone is too coarse.
func (c *Client) TicketsAwaitingApproval(ctx context.Context, userID int64) ([]entity.Ticket, error) {
	return c.listTickets(ctx, url.Values{
		"coordinatorids": {strconv.FormatInt(userID, 10)},
		"statusids":      {strconv.FormatInt(entity.StatusApproval, 10)},
		"count":          {"false"},
	})
}

func (c *Client) listTickets(ctx context.Context, query url.Values) ([]entity.Ticket, error) {
	var resp tasksResponse
	if err := c.get(ctx, "/task", query, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func joinStatusIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

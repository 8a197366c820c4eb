package helpdesk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// PostComment adds a comment to a ticket. When public is true, every
// visibility flag known across deployments is set; the upstream ignores
// the ones it does not recognize.
func (c *Client) PostComment(ctx context.Context, ticketID int64, body string, public bool) error {
	payload := map[string]any{"Comment": body}
	if public {
		payload["IsPublic"] = true
		payload["IsClientVisible"] = true
		payload["ForClient"] = true
		payload["Internal"] = false
		payload["IsHidden"] = false
	}
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/task/%d", ticketID), payload, nil)
}

// CoordinateRequest carries the optional parts of a coordination call.
type CoordinateRequest struct {
	// Comment is attached to the coordination when non-empty.
	Comment string

	// CoordinatorID selects the acting coordinator when the ticket has
	// several. Zero leaves the choice to the upstream.
	CoordinatorID int64

	// StatusOnApprove, when non-zero, is set explicitly after a
	// successful approval. Some deployments do not advance the status
	// on their own.
	StatusOnApprove int64
}

// Coordinate approves or declines a ticket awaiting coordination.
func (c *Client) Coordinate(ctx context.Context, ticketID int64, approve bool, req CoordinateRequest) error {
	path := fmt.Sprintf("/task/%d", ticketID)

	payload := map[string]any{"Coordinate": approve}
	if req.CoordinatorID != 0 {
		payload["CoordinatorId"] = req.CoordinatorID
		payload["CoordinateForCoordinatorId"] = req.CoordinatorID
	}
	if req.Comment != "" {
		payload["Comment"] = req.Comment
	}
	if err := c.send(ctx, http.MethodPut, path, payload, nil); err != nil {
		return err
	}

	if approve && req.StatusOnApprove != 0 {
		if err := c.send(ctx, http.MethodPut, path, map[string]any{"StatusId": req.StatusOnApprove}, nil); err != nil {
			// The coordination itself succeeded; the status override is
			// best-effort.
			slog.Warn("could not force status after approval",
				slog.Int64("ticket_id", ticketID),
				slog.Int64("status_id", req.StatusOnApprove),
				slog.Any("error", err))
		}
	}
	return nil
}

// CreateTicketRequest is the payload for creating a ticket.
type CreateTicketRequest struct {
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
	CreatorID   int64  `json:"CreatorId"`
	ServiceID   int64  `json:"ServiceId"`
	StatusID    int64  `json:"StatusId,omitempty"`
}

// CreateTicket creates a ticket and returns its upstream id.
func (c *Client) CreateTicket(ctx context.Context, req CreateTicketRequest) (int64, error) {
	var resp struct {
		ID int64 `json:"Id"`
	}
	if err := c.send(ctx, http.MethodPost, "/task", req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

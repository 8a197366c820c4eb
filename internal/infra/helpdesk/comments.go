package helpdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"helpdesk-notify/internal/domain/entity"
)

// includeVariants are tried in order until the details payload carries a
// comments container. Deployments differ in which value they honor.
var includeVariants = []string{"COMMENTS", "TASKCOMMENTS", "COMMENTSALL"}

// TicketDetails fetches a single ticket with its comments. Include
// variants are tried in order; if none yields comments, the last
// successful payload is returned without them so status fields are still
// usable.
func (c *Client) TicketDetails(ctx context.Context, ticketID int64) (*entity.TicketDetails, error) {
	path := fmt.Sprintf("/task/%d", ticketID)

	var lastErr error
	var fallback *entity.TicketDetails
	for _, include := range includeVariants {
		var payload map[string]json.RawMessage
		if err := c.get(ctx, path, url.Values{"include": {include}}, &payload); err != nil {
			lastErr = err
			continue
		}

		details, err := decodeDetails(payload)
		if err != nil {
			lastErr = err
			continue
		}
		if len(details.Comments) > 0 {
			return details, nil
		}
		// No comments container under this variant; keep the decoded
		// details in case no remaining variant yields one either.
		fallback = details
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, lastErr
}

// TicketComments fetches comments from the dedicated endpoint.
func (c *Client) TicketComments(ctx context.Context, ticketID int64) ([]entity.Comment, error) {
	path := fmt.Sprintf(c.cfg.CommentsPath, ticketID)

	var payload json.RawMessage
	if err := c.get(ctx, path, nil, &payload); err != nil {
		return nil, err
	}

	objects, err := commentObjects(payload)
	if err != nil {
		return nil, err
	}
	comments := make([]entity.Comment, 0, len(objects))
	for _, obj := range objects {
		comments = append(comments, entity.CommentFromEndpoint(obj))
	}
	return comments, nil
}

// TicketLifetime fetches the ticket's lifetime events re-projected into
// the comment shape. Operator entries and bodiless events are dropped.
func (c *Client) TicketLifetime(ctx context.Context, ticketID int64) ([]entity.Comment, error) {
	query := url.Values{
		"taskid":            {strconv.FormatInt(ticketID, 10)},
		"lastcommentsontop": {"true"},
	}
	var resp struct {
		TaskLifetimes []map[string]any `json:"TaskLifetimes"`
	}
	if err := c.get(ctx, c.cfg.LifetimePath, query, &resp); err != nil {
		return nil, err
	}

	comments := make([]entity.Comment, 0, len(resp.TaskLifetimes))
	for _, obj := range resp.TaskLifetimes {
		if comment, ok := entity.CommentFromLifetime(obj); ok {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

// commentContainerKeys are the names under which deployments nest a
// comment list.
var commentContainerKeys = []string{"Comments", "Items", "TaskComments", "List", "CommentsList"}

// decodeDetails extracts the ticket and any embedded comment container
// from a details payload.
func decodeDetails(payload map[string]json.RawMessage) (*entity.TicketDetails, error) {
	details := &entity.TicketDetails{}

	taskRaw, ok := payload["Task"]
	if !ok {
		return nil, &DecodeError{Cause: fmt.Errorf("details payload has no Task")}
	}
	if err := json.Unmarshal(taskRaw, &details.Ticket); err != nil {
		return nil, &DecodeError{Cause: err}
	}

	for _, key := range commentContainerKeys {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		objects, err := commentObjects(raw)
		if err != nil || len(objects) == 0 {
			continue
		}
		for _, obj := range objects {
			details.Comments = append(details.Comments, entity.CommentFromDetails(obj))
		}
		break
	}
	return details, nil
}

// commentObjects normalizes a comment payload that is either a bare list
// or a container object nesting the list under one of the known keys.
func commentObjects(raw json.RawMessage) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var container map[string]json.RawMessage
	if err := json.Unmarshal(raw, &container); err != nil {
		return nil, &DecodeError{Cause: err}
	}
	for _, key := range commentContainerKeys {
		inner, ok := container[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &list); err == nil {
			return list, nil
		}
	}
	return nil, nil
}

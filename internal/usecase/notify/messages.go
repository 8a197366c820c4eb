package notify

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"helpdesk-notify/internal/domain/entity"
)

// maxBodyRunes bounds the comment body rendered in a notification.
const maxBodyRunes = 400

func formatNewTicket(t *entity.Ticket) string {
	return fmt.Sprintf("🆕 New ticket #%d: %s", t.ID, html.EscapeString(t.Name))
}

func formatStatusChange(t *entity.Ticket, shadow *entity.TicketShadow) string {
	return fmt.Sprintf("🔄 Ticket #%d status: %s → %s",
		t.ID, displayName(shadow.StatusName), displayName(t.StatusName))
}

func formatExecutorChange(t *entity.Ticket, shadow *entity.TicketShadow) string {
	return fmt.Sprintf("👤 Ticket #%d executor: %s → %s",
		t.ID, displayName(shadow.ExecutorName), displayName(t.ExecutorName))
}

func formatClosure(ticketID int64, t *entity.Ticket) string {
	return fmt.Sprintf("✅ Ticket #%d → %s", ticketID, displayName(t.StatusName))
}

func formatComment(ticketID int64, author, body string) string {
	return fmt.Sprintf("💬 New comment on #%d — %s: %s",
		ticketID, html.EscapeString(author), html.EscapeString(truncateBody(body)))
}

func formatApproval(t *entity.Ticket) string {
	return fmt.Sprintf("🔏 Approval required: #%d — %s", t.ID, html.EscapeString(t.Name))
}

// displayName renders a possibly empty upstream name, HTML-escaped, with
// a dash placeholder for the empty case.
func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "—"
	}
	return html.EscapeString(name)
}

// truncateBody trims a comment body to maxBodyRunes, appending an
// ellipsis when it was cut.
func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	r := []rune(body)
	if len(r) <= maxBodyRunes {
		return body
	}
	return string(r[:maxBodyRunes]) + "…"
}

// openLinkKeyboard is a single "open in browser" button, or nil when no
// web base is configured.
func (s *Service) openLinkKeyboard(ticketID int64) [][]entity.Button {
	url := s.ticketURL(ticketID)
	if url == "" {
		return nil
	}
	return [][]entity.Button{{{Text: "🔗 Open", URL: url}}}
}

// approvalKeyboard offers approve/decline callbacks plus the web link
// when available.
func (s *Service) approvalKeyboard(ticketID int64) [][]entity.Button {
	rows := [][]entity.Button{{
		{Text: "✅ Approve", CallbackData: fmt.Sprintf("approval:ok:%d", ticketID)},
		{Text: "❌ Decline", CallbackData: fmt.Sprintf("approval:no:%d", ticketID)},
	}}
	if url := s.ticketURL(ticketID); url != "" {
		rows = append(rows, []entity.Button{{Text: "🔗 Open", URL: url}})
	}
	return rows
}

func (s *Service) ticketURL(ticketID int64) string {
	if s.webBase == "" {
		return ""
	}
	return strings.TrimRight(s.webBase, "/") + "/" + strconv.FormatInt(ticketID, 10)
}

package entity

import (
	"sort"
	"strconv"
)

// RotationComment is the rotation cursor key for the comment detector.
const RotationComment = "comment"

// SeedCommentLimit is the number of most recent comment fingerprints
// retained per ticket shadow.
const SeedCommentLimit = 50

// TicketShadow is the cached projection of a ticket used for
// differential notification. Pointer fields are nil until a value has
// been observed; a nil prior suppresses change detection for that field.
type TicketShadow struct {
	StatusID       *int64   `json:"status_id"`
	StatusName     string   `json:"status_name,omitempty"`
	ExecutorID     *int64   `json:"executor_id"`
	ExecutorName   string   `json:"executor_name,omitempty"`
	Name           string   `json:"name,omitempty"`
	CreateDate     string   `json:"create_date,omitempty"`
	LastCommentIDs []string `json:"last_comment_ids"`
}

// ShadowOf builds a shadow mirroring the ticket's current upstream state.
// Comment fingerprints are seeded separately.
func ShadowOf(t *Ticket) *TicketShadow {
	statusID := t.StatusID
	s := &TicketShadow{
		StatusID:     &statusID,
		StatusName:   t.StatusName,
		ExecutorName: t.ExecutorName,
		Name:         t.Name,
		CreateDate:   t.CreateDate,
	}
	if t.ExecutorID != nil {
		id := *t.ExecutorID
		s.ExecutorID = &id
	}
	return s
}

// NotificationCache is the engine's only memory for a chat: ticket
// shadows, rotation cursors, and the approval-awaiting set. It is
// persisted between polling cycles.
type NotificationCache struct {
	Initialized bool                     `json:"initialized"`
	Tickets     map[string]*TicketShadow `json:"tickets"`
	Rotation    map[string]int           `json:"rotation"`
	Approvals   []string                 `json:"approvals"`
}

// NewNotificationCache returns an empty, uninitialized cache.
func NewNotificationCache() *NotificationCache {
	return &NotificationCache{
		Tickets:  make(map[string]*TicketShadow),
		Rotation: make(map[string]int),
	}
}

// Normalize ensures the inner maps exist after JSON decoding.
func (c *NotificationCache) Normalize() {
	if c.Tickets == nil {
		c.Tickets = make(map[string]*TicketShadow)
	}
	if c.Rotation == nil {
		c.Rotation = make(map[string]int)
	}
}

// HasApproval reports whether the ticket key is in the approval set.
func (c *NotificationCache) HasApproval(key string) bool {
	for _, a := range c.Approvals {
		if a == key {
			return true
		}
	}
	return false
}

// SetApprovals replaces the approval set wholesale with the given keys,
// stored sorted for stable persistence.
func (c *NotificationCache) SetApprovals(keys []string) {
	c.Approvals = append([]string(nil), keys...)
	sort.Slice(c.Approvals, func(i, j int) bool {
		return lessTicketKey(c.Approvals[i], c.Approvals[j])
	})
}

// SortedTicketKeys returns the shadowed ticket keys in ascending numeric
// order, giving detectors a deterministic iteration order.
func (c *NotificationCache) SortedTicketKeys() []string {
	keys := make([]string, 0, len(c.Tickets))
	for k := range c.Tickets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessTicketKey(keys[i], keys[j]) })
	return keys
}

// RotationWindow selects up to window indices from a list of length n in
// round-robin order starting at the persisted cursor for name, then
// advances the cursor by the window size modulo n. A zero-length list
// resets the cursor.
func (c *NotificationCache) RotationWindow(name string, n, window int) []int {
	if n <= 0 {
		c.Rotation[name] = 0
		return nil
	}
	start := c.Rotation[name] % n
	if start < 0 {
		start = 0
	}
	if window > n {
		window = n
	}
	idx := make([]int, 0, window)
	for i := 0; i < window; i++ {
		idx = append(idx, (start+i)%n)
	}
	c.Rotation[name] = (start + window) % n
	return idx
}

// lessTicketKey orders stringified ticket ids numerically, falling back
// to lexicographic order for non-numeric keys.
func lessTicketKey(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	if aerr == nil {
		return true
	}
	if berr == nil {
		return false
	}
	return a < b
}

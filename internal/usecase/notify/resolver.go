package notify

import (
	"context"
	"strings"
	"sync"

	"helpdesk-notify/internal/observability/metrics"
)

// NameResolver memoizes upstream user-id to display-name lookups for
// the lifetime of the process. Failed lookups are not cached so a
// transient upstream error does not pin an empty name.
type NameResolver struct {
	api HelpdeskAPI

	mu    sync.RWMutex
	names map[int64]string
}

// NewNameResolver creates an empty resolver over the given client.
func NewNameResolver(api HelpdeskAPI) *NameResolver {
	return &NameResolver{api: api, names: make(map[int64]string)}
}

// Resolve returns the display name for a user id, or "" when the lookup
// fails.
func (r *NameResolver) Resolve(ctx context.Context, userID int64) string {
	r.mu.RLock()
	name, ok := r.names[userID]
	r.mu.RUnlock()
	if ok {
		return name
	}

	user, err := r.api.FindUser(ctx, userID)
	if err != nil {
		metrics.IncAPIError(siteFindUser)
		return ""
	}
	if user == nil {
		return ""
	}
	name = strings.TrimSpace(user.Name)
	if name == "" {
		return ""
	}

	r.mu.Lock()
	r.names[userID] = name
	r.mu.Unlock()
	return name
}

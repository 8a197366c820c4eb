package helpdesk

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"helpdesk-notify/internal/domain/entity"
)

type usersResponse struct {
	Users []entity.User `json:"Users"`
}

type userResponse struct {
	User *entity.User `json:"User"`
}

// FindUserByPhone searches the upstream for a user whose phone matches.
// Accepted input forms: +7XXXXXXXXXX, 8XXXXXXXXXX, 7XXXXXXXXXX, or the
// 10-digit national form; matching is on the normalized national number.
// Every phone-bearing field of each candidate is checked. If nothing
// matches but the search returned exactly one user, that user is
// returned (some deployments index phones the search cannot see).
// Returns nil without error when there is no match.
func (c *Client) FindUserByPhone(ctx context.Context, phone string) (*entity.User, error) {
	national := NormalizePhone(phone)
	if national == "" {
		return nil, nil
	}

	var resp usersResponse
	query := url.Values{"search": {national}}
	if err := c.get(ctx, "/user", query, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Users {
		u := &resp.Users[i]
		for _, field := range u.PhoneFields() {
			if phoneMatches(field, national) {
				return u, nil
			}
		}
	}
	if len(resp.Users) == 1 {
		return &resp.Users[0], nil
	}
	return nil, nil
}

// FindUser fetches a single user by upstream id. Returns nil without
// error when the payload carries no user.
func (c *Client) FindUser(ctx context.Context, userID int64) (*entity.User, error) {
	var resp userResponse
	if err := c.get(ctx, fmt.Sprintf("/user/%d", userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// NormalizePhone reduces a phone number to its 10-digit national form.
// Returns "" when the input has fewer than 10 digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return ""
	}
	return digits[len(digits)-10:]
}

// phoneMatches reports whether a stored phone field denotes the given
// national number, accepting bare national, 7-prefixed, and 8-prefixed
// renderings.
func phoneMatches(field, national string) bool {
	var b strings.Builder
	for _, r := range field {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if d == "" {
		return false
	}
	last10 := d
	if len(d) >= 10 {
		last10 = d[len(d)-10:]
	}
	return last10 == national || d == "7"+national || d == "8"+national
}

package entity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Comment is the unified projection of an upstream comment. The upstream
// exposes comments in several shapes across endpoints; the adapter
// functions below each produce this record.
type Comment struct {
	ID         int64
	CreateDate string
	Author     string
	AuthorID   int64
	Body       string
}

// fingerprintBodyPrefix bounds the body portion of a synthetic
// fingerprint.
const fingerprintBodyPrefix = 64

// Fingerprint returns the opaque comparable key identifying this comment
// for "already seen" checks. The upstream id rendered as a string is
// preferred; without one, a synthetic key is formed from the creation
// date, author, and body prefix. Uniqueness is per ticket, not global.
func (c *Comment) Fingerprint() string {
	if c.ID != 0 {
		return strconv.FormatInt(c.ID, 10)
	}
	body := c.Body
	if r := []rune(body); len(r) > fingerprintBodyPrefix {
		body = string(r[:fingerprintBodyPrefix])
	}
	return c.CreateDate + "|" + c.Author + "|" + body
}

// Fingerprints maps a comment slice to its fingerprints in order.
func Fingerprints(comments []Comment) []string {
	out := make([]string, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].Fingerprint())
	}
	return out
}

// CommentFromDetails adapts a comment object embedded in a ticket
// details payload.
func CommentFromDetails(m map[string]any) Comment {
	return commentFromObject(m)
}

// CommentFromEndpoint adapts a comment object returned by the dedicated
// comments endpoint. The shape matches the details embedding.
func CommentFromEndpoint(m map[string]any) Comment {
	return commentFromObject(m)
}

// CommentFromLifetime adapts a ticket lifetime event into the comment
// shape. Operator entries and entries without a body are not comments;
// the second return value reports whether the event qualifies.
func CommentFromLifetime(m map[string]any) (Comment, bool) {
	if b, ok := m["AuthorIsOperator"].(bool); ok && b {
		return Comment{}, false
	}
	c := commentFromObject(m)
	if strings.TrimSpace(c.Body) == "" {
		return Comment{}, false
	}
	return c, true
}

func commentFromObject(m map[string]any) Comment {
	return Comment{
		ID:         numberField(m, "Id"),
		CreateDate: stringField(m, "Date", "CreateDate", "Created"),
		Author:     authorField(m),
		AuthorID:   numberField(m, "CreatorId", "UserId", "AuthorId", "AddedById"),
		Body:       stringField(m, "Comment", "Comments", "Text", "Body", "Description"),
	}
}

// authorField resolves the author display name from the payload alone:
// nested Creator or User objects first, then the flat name keys. An
// empty result leaves resolution to the caller via AuthorID.
func authorField(m map[string]any) string {
	for _, key := range []string{"Creator", "User"} {
		if nested, ok := m[key].(map[string]any); ok {
			if name := stringField(nested, "Name", "FullName", "FIO", "DisplayName"); name != "" {
				return name
			}
		}
	}
	return stringField(m, "CreatorName", "UserName", "AuthorName", "Author", "Creator", "User")
}

// stringField returns the first non-empty string value among keys.
// Non-string values (such as the Creator object handled above) are
// skipped.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// numberField returns the first numeric value among keys, accepting the
// float64, json.Number, and numeric-string forms JSON decoding produces.
func numberField(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return int64(v)
			}
		case json.Number:
			if n, err := v.Int64(); err == nil && n != 0 {
				return n
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n != 0 {
				return n
			}
		}
	}
	return 0
}

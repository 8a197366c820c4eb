package entity

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComment_Fingerprint(t *testing.T) {
	t.Run("upstream id wins", func(t *testing.T) {
		c := Comment{ID: 4711, CreateDate: "2024-01-01", Author: "A", Body: "hello"}
		assert.Equal(t, "4711", c.Fingerprint())
	})

	t.Run("synthetic key without id", func(t *testing.T) {
		c := Comment{CreateDate: "2024-01-01T10:00:00", Author: "Ivanova", Body: "restarted the service"}
		assert.Equal(t, "2024-01-01T10:00:00|Ivanova|restarted the service", c.Fingerprint())
	})

	t.Run("synthetic key truncates long bodies", func(t *testing.T) {
		long := strings.Repeat("ы", 200)
		c := Comment{CreateDate: "d", Author: "a", Body: long}

		fp := c.Fingerprint()

		assert.Equal(t, "d|a|"+strings.Repeat("ы", 64), fp)
	})
}

func TestCommentFromEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Comment
	}{
		{
			name:    "flat comment object",
			payload: `{"Id": 9, "Date": "2024-03-01", "CreatorName": "Sidorov", "Comments": "fixed"}`,
			want:    Comment{ID: 9, CreateDate: "2024-03-01", Author: "Sidorov", Body: "fixed"},
		},
		{
			name:    "nested creator object",
			payload: `{"Id": 10, "Created": "2024-03-02", "Creator": {"Id": 53, "Name": "Ivanova"}, "Text": "done"}`,
			want:    Comment{ID: 10, CreateDate: "2024-03-02", Author: "Ivanova", AuthorID: 53, Body: "done"},
		},
		{
			name:    "id as string, author only as id",
			payload: `{"Id": "11", "CreateDate": "2024-03-03", "CreatorId": 77, "Body": "ping"}`,
			want:    Comment{ID: 11, CreateDate: "2024-03-03", AuthorID: 77, Body: "ping"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &m))

			assert.Equal(t, tt.want, CommentFromEndpoint(m))
		})
	}
}

func TestCommentFromLifetime(t *testing.T) {
	t.Run("operator entries are skipped", func(t *testing.T) {
		m := map[string]any{"Comments": "closed automatically", "AuthorIsOperator": true}

		_, ok := CommentFromLifetime(m)

		assert.False(t, ok)
	})

	t.Run("entries without a body are skipped", func(t *testing.T) {
		m := map[string]any{"Date": "2024-03-01", "CreatorName": "Ivanova", "Comments": "  "}

		_, ok := CommentFromLifetime(m)

		assert.False(t, ok)
	})

	t.Run("ordinary comment event passes", func(t *testing.T) {
		m := map[string]any{"Date": "2024-03-01", "CreatorName": "Ivanova", "Comments": "any update?"}

		c, ok := CommentFromLifetime(m)

		require.True(t, ok)
		assert.Equal(t, "Ivanova", c.Author)
		assert.Equal(t, "any update?", c.Body)
	})
}

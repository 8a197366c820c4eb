package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk-notify/internal/domain/entity"
)

func TestBotAPI_SendMessage(t *testing.T) {
	t.Run("payload shape", func(t *testing.T) {
		var gotPath string
		var payload map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &payload))
			w.Write([]byte(`{"ok": true}`))
		}))
		t.Cleanup(srv.Close)

		bot := NewBotAPI(Config{Token: "123:abc", BaseURL: srv.URL})
		err := bot.SendMessage(context.Background(), 777, "🆕 New ticket #1: printer", nil)

		require.NoError(t, err)
		assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
		assert.Equal(t, float64(777), payload["chat_id"])
		assert.Equal(t, "🆕 New ticket #1: printer", payload["text"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		assert.Equal(t, true, payload["disable_web_page_preview"])
		assert.NotContains(t, payload, "reply_markup")
	})

	t.Run("inline keyboard rendering", func(t *testing.T) {
		var payload struct {
			ReplyMarkup inlineKeyboardMarkup `json:"reply_markup"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &payload))
			w.Write([]byte(`{"ok": true}`))
		}))
		t.Cleanup(srv.Close)

		bot := NewBotAPI(Config{Token: "t", BaseURL: srv.URL})
		keyboard := [][]entity.Button{
			{
				{Text: "✅ Approve", CallbackData: "approval:ok:40412"},
				{Text: "❌ Decline", CallbackData: "approval:no:40412"},
			},
			{{Text: "🔗 Open", URL: "https://helpdesk.example.com/task/40412"}},
		}
		err := bot.SendMessage(context.Background(), 777, "approval", keyboard)

		require.NoError(t, err)
		require.Len(t, payload.ReplyMarkup.InlineKeyboard, 2)
		assert.Equal(t, "approval:ok:40412", payload.ReplyMarkup.InlineKeyboard[0][0].CallbackData)
		assert.Equal(t, "https://helpdesk.example.com/task/40412", payload.ReplyMarkup.InlineKeyboard[1][0].URL)
	})

	t.Run("api-level failure becomes an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"ok": false, "error_code": 403, "description": "bot was blocked by the user"}`))
		}))
		t.Cleanup(srv.Close)

		bot := NewBotAPI(Config{Token: "t", BaseURL: srv.URL})
		err := bot.SendMessage(context.Background(), 777, "hello", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked")
	})
}

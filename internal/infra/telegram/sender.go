// Package telegram implements the chat transport over the Telegram Bot
// API. The engine consumes it through its Sender interface; failures
// surface as errors which the engine logs and absorbs.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"helpdesk-notify/internal/domain/entity"
)

// Config contains the Bot API settings.
type Config struct {
	// Token is the bot token issued by BotFather.
	Token string

	// Timeout is the HTTP request timeout for Bot API calls.
	Timeout time.Duration

	// BaseURL overrides the Bot API host, for tests. Empty means the
	// production endpoint.
	BaseURL string
}

// BotAPI sends messages through api.telegram.org. All outbound sends
// share one rate limiter: the Bot API allows roughly 30 messages per
// second across all chats.
type BotAPI struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBotAPI creates a sender with the given configuration.
func NewBotAPI(config Config) *BotAPI {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.telegram.org"
	}
	return &BotAPI{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(25), 5),
	}
}

// inlineKeyboardMarkup is the Bot API reply_markup shape.
type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// sendMessageRequest is the JSON payload for the sendMessage method.
type sendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview"`
	ReplyMarkup           *inlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage delivers one message to a chat. Web previews are always
// disabled; a non-empty keyboard becomes an inline keyboard.
func (b *BotAPI) SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]entity.Button) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limiter: %w", err)
	}

	req := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		ReplyMarkup:           markupFor(keyboard),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", b.config.BaseURL, b.config.Token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sendMessage response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("decode sendMessage response (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram api error %d: %s", apiResp.ErrorCode, apiResp.Description)
	}
	return nil
}

func markupFor(keyboard [][]entity.Button) *inlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}
	markup := &inlineKeyboardMarkup{InlineKeyboard: make([][]inlineKeyboardButton, 0, len(keyboard))}
	for _, row := range keyboard {
		buttons := make([]inlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, inlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}

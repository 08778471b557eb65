// Package telegram is a minimal Bot API client for outbound messages.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadrouter_backend/platform/config"
	"leadrouter_backend/platform/logger"
)

const defaultBaseURL = "https://api.telegram.org"

// Client sends messages through the Telegram Bot API. A nil client is a
// no-op, so callers can wire it unconditionally.
type Client struct {
	baseURL  string
	botToken string
	http     *http.Client
	log      *logger.Logger
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// NewClient creates a telegram client, or nil when no bot token is configured.
func NewClient(cfg config.TelegramConfig, log *logger.Logger) *Client {
	if !cfg.IsTelegramEnabled() {
		return nil
	}

	baseURL := cfg.GetTelegramAPIBaseURL()
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: cfg.GetTelegramBotToken(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// SendMessage delivers a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID string, text string) error {
	if c == nil {
		return nil
	}
	if chatID == "" {
		return fmt.Errorf("telegram chat id is empty")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("telegram message sent", "chat_id", chatID)
	return nil
}

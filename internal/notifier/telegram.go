// Package notifier delivers reports over the Telegram Bot API and answers chat commands.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"StockLens/internal/retry"
)

// DefaultAPIURL is the public Telegram Bot API host.
const DefaultAPIURL = "https://api.telegram.org"

// Options configures a TelegramNotifier.
type Options struct {
	BotToken string
	ChatID   string
	Proxy    string
	APIURL   string
	Logger   zerolog.Logger
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	botToken    string
	chatID      string
	client      *resty.Client
	logger      zerolog.Logger
	retryDelay  time.Duration
	pollBackoff time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(o Options) *TelegramNotifier {
	if o.APIURL == "" {
		o.APIURL = DefaultAPIURL
	}
	client := resty.New().
		SetBaseURL(o.APIURL).
		SetTimeout(35 * time.Second)
	if o.Proxy != "" {
		client.SetProxy(o.Proxy)
	}
	return &TelegramNotifier{
		botToken:    o.BotToken,
		chatID:      o.ChatID,
		client:      client,
		logger:      o.Logger,
		retryDelay:  time.Second,
		pollBackoff: 5 * time.Second,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.SendTo(ctx, t.chatID, text)
}

// SendTo sends an HTML message to chatID.
func (t *TelegramNotifier) SendTo(ctx context.Context, chatID, text string) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam("token", t.botToken).
		SetBody(map[string]string{
			"chat_id":    chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	// Telegram and proxies in front of it do not always send a JSON content type.
	var result apiResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("telegram API error: status %d, decode: %w", resp.StatusCode(), err)
	}
	if resp.StatusCode() != 200 || !result.OK {
		return fmt.Errorf("telegram API error: status %d, %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	attempt := 0
	policy := retry.Policy{Retries: maxRetries, BaseDelay: t.retryDelay, MaxDelay: 30 * time.Second}
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		attempt++
		err := t.Send(ctx, text)
		if err != nil {
			t.logger.Warn().Err(err).Int("attempt", attempt).Int("max", maxRetries+1).Msg("telegram send failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("all %d attempts exhausted: %w", attempt, err)
	}
	return nil
}

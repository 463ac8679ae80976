package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

// Dispatcher sends digests to a Telegram chat via bot API.
type Dispatcher struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher registers bot token and chat identifier.
func NewDispatcher(botToken, chatID string) *Dispatcher {
	return &Dispatcher{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts a plain-text message to the configured chat.
func (d *Dispatcher) Send(ctx context.Context, text string) error {
	if d.botToken == "" || d.chatID == "" || d.client == nil {
		return &domain.DispatchError{Destination: d.chatID, Err: fmt.Errorf("telegram dispatcher misconfigured")}
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", d.botToken)
	form := url.Values{}
	form.Set("chat_id", d.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.DispatchError{Destination: d.chatID, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return &domain.DispatchError{Destination: d.chatID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.DispatchError{Destination: d.chatID, Err: fmt.Errorf("telegram error: %s", resp.Status)}
	}

	return nil
}

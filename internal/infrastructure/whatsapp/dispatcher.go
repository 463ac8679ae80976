package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FeedDigest/internal/domain"
	"FeedDigest/internal/ports"
)

const defaultAPIBase = "https://api.twilio.com"

// Dispatcher sends digests to a WhatsApp number through the Twilio
// Messages API.
type Dispatcher struct {
	accountSID string
	authToken  string
	from       string
	to         string
	apiBase    string
	client     *http.Client
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher registers Twilio credentials and the sender/recipient
// numbers (whatsapp:+E164 format).
func NewDispatcher(accountSID, authToken, from, to string) *Dispatcher {
	return &Dispatcher{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		apiBase:    defaultAPIBase,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message. Twilio rejects bodies over its length limit, so
// the composer must have bounded the text already.
func (d *Dispatcher) Send(ctx context.Context, text string) error {
	if d.accountSID == "" || d.authToken == "" || d.from == "" || d.to == "" {
		return &domain.DispatchError{Destination: d.to, Err: fmt.Errorf("whatsapp dispatcher misconfigured")}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", d.apiBase, d.accountSID)
	form := url.Values{}
	form.Set("From", d.from)
	form.Set("To", d.to)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.DispatchError{Destination: d.to, Err: fmt.Errorf("new request: %w", err)}
	}
	req.SetBasicAuth(d.accountSID, d.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return &domain.DispatchError{Destination: d.to, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.DispatchError{
			Destination: d.to,
			Err:         fmt.Errorf("twilio error %s: %s", resp.Status, strings.TrimSpace(string(detail))),
		}
	}

	return nil
}

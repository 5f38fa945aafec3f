package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client delivers push notifications to an external mobile push gateway over
// HTTP. Delivery is best-effort; callers log failures and move on.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string
}

// New builds a gateway client with the given call timeout.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Endpoint:   endpoint,
	}
}

type pushRequest struct {
	Token string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (c *Client) Send(ctx context.Context, token, title, body string) error {
	if c == nil || c.HTTPClient == nil {
		return errors.New("push: http client not configured")
	}
	if c.Endpoint == "" {
		return errors.New("push: gateway endpoint not configured")
	}
	if token == "" {
		return errors.New("push: device token is required")
	}

	payload, err := json.Marshal(pushRequest{Token: token, Title: title, Body: body})
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.HTTPClient.Do(request)
	if err != nil {
		return fmt.Errorf("push: gateway call failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("push: gateway returned status %d", response.StatusCode)
	}
	return nil
}

// NoopSender drops pushes when no gateway is configured.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, _, _, _ string) error { return nil }

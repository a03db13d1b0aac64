// Package delivery posts finished images to the WhatsApp send-media endpoint.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"postify/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Options configures the delivery client. URL is required.
type Options struct {
	URL        string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client sends one media message per call. It is safe for concurrent use.
type Client struct {
	url    string
	http   *http.Client
	logger zerolog.Logger
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Caption string `json:"caption"`
}

func NewClient(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("delivery: URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{url: opts.URL, http: httpClient, logger: opts.Logger}, nil
}

// Send posts a base64-encoded image with a caption to the given phone number
// and returns the endpoint's response body. Transport failures and non-2xx
// statuses are reported as ErrDelivery.
func (c *Client) Send(ctx context.Context, phone, imageBase64, caption string) (json.RawMessage, error) {
	payload, err := json.Marshal(sendRequest{Phone: phone, Message: imageBase64, Caption: caption})
	if err != nil {
		return nil, fmt.Errorf("delivery: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("delivery: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info().Str("phone", phone).Msg("sending media message")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send to %s: %v", domain.ErrDelivery, phone, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response for %s: %v", domain.ErrDelivery, phone, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: endpoint returned %d: %s", domain.ErrDelivery, resp.StatusCode, truncate(body, 256))
	}

	return normalizeBody(body), nil
}

// normalizeBody keeps valid JSON as-is and quotes anything else so the
// result can always be embedded in a JSON document.
func normalizeBody(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return json.RawMessage(`""`)
	}
	return json.RawMessage(quoted)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

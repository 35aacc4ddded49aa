// Package webhook реализует клиент Discord-совместимого вебхука
// для исходящих уведомлений операторам.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client клиент вебхука.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient создаёт новый клиент вебхука.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type message struct {
	Content  string `json:"content"`
	Username string `json:"username"`
}

// Send отправляет текстовое сообщение в вебхук.
func (c *Client) Send(ctx context.Context, content string) error {
	const op = "webhook.Send"

	body, err := json.Marshal(message{Content: content, Username: "FanFindr"})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}

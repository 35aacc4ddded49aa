// Package bankapi реализует клиент банковского API для чтения профилей,
// балансов и выписок по счетам. Авторизация — bearer-токен.
package bankapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client клиент банковского API.
type Client struct {
	apiURL     string
	apiToken   string
	httpClient *http.Client
}

// NewClient создаёт новый клиент банковского API.
// Таймаут ограничивает каждый запрос, чтобы зависший вызов
// не блокировал очередной цикл сверки.
func NewClient(apiURL, apiToken string, timeout time.Duration) *Client {
	return &Client{
		apiURL:   apiURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Profiles возвращает список профилей, доступных токену.
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	const op = "bankapi.Profiles"
	var profiles []Profile
	if err := c.get(ctx, "/profiles", nil, &profiles); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profiles, nil
}

// Balances возвращает балансы профиля по валютам.
func (c *Client) Balances(ctx context.Context, profileID int64) ([]Balance, error) {
	const op = "bankapi.Balances"
	var balances []Balance
	path := fmt.Sprintf("/profiles/%d/balances", profileID)
	if err := c.get(ctx, path, nil, &balances); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return balances, nil
}

// BalanceStatement возвращает выписку по счёту за интервал [start, end].
func (c *Client) BalanceStatement(ctx context.Context, profileID, balanceID int64, start, end time.Time) (*Statement, error) {
	const op = "bankapi.BalanceStatement"
	query := url.Values{}
	query.Set("intervalStart", start.UTC().Format(time.RFC3339))
	query.Set("intervalEnd", end.UTC().Format(time.RFC3339))

	var statement Statement
	path := fmt.Sprintf("/profiles/%d/balance-statements/%d", profileID, balanceID)
	if err := c.get(ctx, path, query, &statement); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &statement, nil
}

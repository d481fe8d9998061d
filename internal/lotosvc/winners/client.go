package winners

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the external winners registry that tracks who won a round
// and how their super game went.
type Client struct {
	baseURL string
	client  *http.Client
}

// ReportedWinner is one winner entry submitted when a round ends.
type ReportedWinner struct {
	Username        string `json:"username"`
	SuperGameStatus string `json:"super_game_status"`
}

type reportRequest struct {
	Winners []ReportedWinner `json:"winners"`
	Server  string           `json:"server"`
	Channel string           `json:"channel"`
}

type reportResponse struct {
	IDs map[string]string `json:"ids"`
}

type updateRequest struct {
	SuperGameStatus string `json:"super_game_status"`
	Server          string `json:"server"`
	Channel         string `json:"channel"`
}

// WinnerEntry is one row of the registry's winner listing.
type WinnerEntry struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	SuperGameStatus string `json:"super_game_status"`
	CreatedAt       string `json:"created_at"`
}

type listResponse struct {
	Winners []WinnerEntry `json:"winners"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Report submits the round winners and returns the registry id per username.
func (c *Client) Report(ctx context.Context, server, channel string, winners []ReportedWinner) (map[string]string, error) {
	body, err := json.Marshal(reportRequest{Winners: winners, Server: server, Channel: channel})
	if err != nil {
		return nil, fmt.Errorf("failed to encode winners report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loto_winners", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build winners report: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to report winners: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("winners report returned status %d", resp.StatusCode)
	}

	var out reportResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode winners report response: %w", err)
	}

	return out.IDs, nil
}

// UpdateStatus records the super game outcome for a previously reported winner.
func (c *Client) UpdateStatus(ctx context.Context, id, server, channel, status string) error {
	body, err := json.Marshal(updateRequest{SuperGameStatus: status, Server: server, Channel: channel})
	if err != nil {
		return fmt.Errorf("failed to encode status update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loto_winners/"+id, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update winner %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("winner update returned status %d", resp.StatusCode)
	}

	return nil
}

// List fetches the registry's winner history for a channel.
func (c *Client) List(ctx context.Context, server, channel string) ([]WinnerEntry, error) {
	q := url.Values{}
	q.Set("server", server)
	q.Set("channel", channel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/loto_winners?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build winners listing: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("winners listing returned status %d", resp.StatusCode)
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode winners listing: %w", err)
	}

	return out.Winners, nil
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"openarbitrage/internal/game"
)

// Client talks to an arb-api process.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ResetOptions mirrors the reset endpoint; nil fields keep the server defaults.
type ResetOptions struct {
	Seed        *int64   `json:"seed,omitempty"`
	TravelCost  *float64 `json:"travel_cost,omitempty"`
	WinNetWorth *float64 `json:"win_net_worth,omitempty"`
	MaxDays     *int     `json:"max_days,omitempty"`
}

type CommandResult struct {
	Events []game.Event `json:"events"`
	game.View
}

// APIError is a non-2xx reply.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (c *Client) State(ctx context.Context) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out)
	return out, err
}

func (c *Client) Reset(ctx context.Context, opts ResetOptions) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/reset", opts, &out)
	return out, err
}

func (c *Client) Restore(ctx context.Context, snap game.Snapshot) (game.View, error) {
	var out game.View
	err := c.jsonRequest(ctx, http.MethodPut, "/v1/state", snap, &out)
	return out, err
}

func (c *Client) Command(ctx context.Context, cmd game.Command) (CommandResult, error) {
	req, err := game.Request(cmd)
	if err != nil {
		return CommandResult{}, err
	}
	var out CommandResult
	err = c.jsonRequest(ctx, http.MethodPost, "/v1/commands", req, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

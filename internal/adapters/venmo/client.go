// Package venmo is the payment-ledger side of the sync: a thin API client
// plus a paginated reader that normalizes payments into the common
// transaction model.
package venmo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.venmo.com/v1"

// Client is a minimal Venmo API client. It covers exactly the three calls
// the cashout engine needs: profile, transaction feed, and bank transfer.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Venmo API client
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MyProfile fetches the authenticated user's profile and current balance
func (c *Client) MyProfile(ctx context.Context) (*Profile, error) {
	var response struct {
		Data struct {
			BalanceCents int64 `json:"balance"`
			User         Actor `json:"user"`
		} `json:"data"`
	}

	if err := c.get(ctx, "/me", &response); err != nil {
		return nil, fmt.Errorf("failed to load venmo profile: %w", err)
	}

	return &Profile{
		UserID:       response.Data.User.ID,
		Username:     response.Data.User.Username,
		DisplayName:  response.Data.User.DisplayName,
		BalanceCents: response.Data.BalanceCents,
	}, nil
}

// Payments fetches one page of the user's payment feed. beforeID pages
// backwards through the feed; pass the empty string for the first page.
// The returned cursor is empty once the feed is exhausted.
func (c *Client) Payments(ctx context.Context, userID, beforeID string) ([]Payment, string, error) {
	path := fmt.Sprintf("/stories/target-or-actor/%s", userID)
	if beforeID != "" {
		path += "?before_id=" + beforeID
	}

	var response struct {
		Data   []Payment `json:"data"`
		Paging struct {
			NextBeforeID string `json:"next_before_id"`
		} `json:"paging"`
	}

	if err := c.get(ctx, path, &response); err != nil {
		return nil, "", fmt.Errorf("failed to load venmo transactions: %w", err)
	}

	return response.Data, response.Paging.NextBeforeID, nil
}

// Transfer initiates a bank transfer of the given amount out of the Venmo
// balance.
func (c *Client) Transfer(ctx context.Context, amountCents int64) error {
	body := map[string]interface{}{
		"amount": amountCents,
		"type":   "standard",
	}

	if err := c.post(ctx, "/transfers", body); err != nil {
		return fmt.Errorf("failed to initiate transfer of %d cents: %w", amountCents, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			} `json:"error"`
		}

		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return fmt.Errorf("venmo API error: %s (code: %d)",
				errorResp.Error.Message, errorResp.Error.Code)
		}

		return fmt.Errorf("venmo API returned status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

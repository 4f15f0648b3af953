// Package lunchmoney is a typed client for the pieces of the Lunch Money API
// the sync consumes: categories, transaction listing, updates, and inserts.
package lunchmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://dev.lunchmoney.app/v1"

// ErrCategoryNotFound is returned when no category matches the configured
// name. Callers treat this as a soft skip, not a fatal error.
var ErrCategoryNotFound = errors.New("lunch money category not found")

// Client is a Lunch Money API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Lunch Money API client
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Categories lists all transaction categories
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var response struct {
		Categories []Category `json:"categories"`
	}

	if err := c.do(ctx, http.MethodGet, "/categories", nil, &response); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return response.Categories, nil
}

// CategoryByName finds a category by its exact name
func (c *Client) CategoryByName(ctx context.Context, name string) (*Category, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}

	for _, category := range categories {
		if category.Name == name {
			return &category, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
}

// Transactions lists transactions in a category between two dates, inclusive
func (c *Client) Transactions(ctx context.Context, categoryID int64, start, end time.Time) ([]Transaction, error) {
	query := url.Values{}
	query.Set("category_id", fmt.Sprintf("%d", categoryID))
	query.Set("start_date", start.Format("2006-01-02"))
	query.Set("end_date", end.Format("2006-01-02"))

	var response struct {
		Transactions []Transaction `json:"transactions"`
	}

	if err := c.do(ctx, http.MethodGet, "/transactions?"+query.Encode(), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	return response.Transactions, nil
}

// UpdateTransaction sets the payee and notes on a transaction
func (c *Client) UpdateTransaction(ctx context.Context, id int64, payee, notes string) error {
	body := map[string]interface{}{
		"transaction": map[string]string{
			"payee": payee,
			"notes": notes,
		},
	}

	var response struct {
		Updated bool `json:"updated"`
	}

	path := fmt.Sprintf("/transactions/%d", id)
	if err := c.do(ctx, http.MethodPut, path, body, &response); err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
	}

	if !response.Updated {
		return fmt.Errorf("transaction %d was not updated", id)
	}

	return nil
}

// InsertTransactions creates new transactions. Lunch Money deduplicates
// against existing transactions sharing an external_id on the same asset and
// returns ids only for the inserts it kept, so the returned slice can be
// shorter than the input; callers diff the counts to detect skipped
// duplicates.
func (c *Client) InsertTransactions(ctx context.Context, txns []InsertTransaction) ([]int64, error) {
	if len(txns) == 0 {
		return nil, nil
	}

	body := map[string]interface{}{
		"transactions":        txns,
		"skip_duplicates":     true,
		"check_for_recurring": false,
	}

	var response struct {
		IDs []int64 `json:"ids"`
	}

	if err := c.do(ctx, http.MethodPost, "/transactions", body, &response); err != nil {
		return nil, fmt.Errorf("failed to insert transactions: %w", err)
	}

	return response.IDs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error string `json:"error"`
		}

		if err := json.Unmarshal(responseBody, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("lunch money API error: %s", errorResp.Error)
		}

		return fmt.Errorf("lunch money API returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

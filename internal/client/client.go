// Package client is the Go consumer of the transaction API: a thin HTTP
// client plus a caching state store for UI frontends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// APIError is a non-2xx response from the server, with the itemized
// field messages when the failure was a validation one.
type APIError struct {
	Status  int
	Message string
	Fields  []string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, "; "))
	}
	return e.Message
}

// Client talks to the transaction API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// ListTransactions fetches one filtered page.
func (c *Client) ListTransactions(ctx context.Context, f core.Filter) (core.Page, error) {
	var page core.Page
	err := c.do(ctx, http.MethodGet, "/api/v1/transactions?"+filterQuery(f), nil, &page)
	return page, err
}

// CreateTransaction adds a transaction and returns it with its id.
func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var created core.Transaction
	err := c.do(ctx, http.MethodPost, "/api/v1/transactions", t, &created)
	return created, err
}

// UpdateTransaction merges the patch into the stored record.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	var updated core.Transaction
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/transactions/%d", id), patch, &updated)
	return updated, err
}

// DeleteTransaction removes a transaction and returns its last state.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var deleted core.Transaction
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/transactions/%d", id), nil, &deleted)
	return deleted, err
}

// DashboardData fetches the aggregate dashboard snapshot.
func (c *Client) DashboardData(ctx context.Context) (core.DashboardStats, error) {
	var stats core.DashboardStats
	err := c.do(ctx, http.MethodGet, "/api/v1/transactions/dashboard_data", nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		return apiError(resp.StatusCode, env)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func apiError(status int, env envelope) *APIError {
	apiErr := &APIError{Status: status, Message: env.Message}
	if len(env.Error) > 0 {
		// Validation failures carry a list; other failures a single string.
		if err := json.Unmarshal(env.Error, &apiErr.Fields); err != nil {
			var detail string
			if json.Unmarshal(env.Error, &detail) == nil && detail != "" {
				apiErr.Message = apiErr.Message + ": " + detail
			}
		}
	}
	return apiErr
}

func filterQuery(f core.Filter) string {
	values := url.Values{}
	if f.Type != "" {
		values.Set("type", string(f.Type))
	}
	if f.Category != "" {
		values.Set("category", f.Category)
	}
	if !f.StartDate.IsZero() {
		values.Set("startDate", f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		values.Set("endDate", f.EndDate.String())
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return values.Encode()
}

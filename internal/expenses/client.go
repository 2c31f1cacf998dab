// Package expenses talks to the REST resource that owns expense records.
package expenses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"budget/internal/core"
)

var ErrNotFound = errors.New("expense not found")

// maxErrorBody bounds how much of a failed response is kept as error text.
const maxErrorBody = 4 << 10

// StatusError is a non-2xx answer from the resource. Body is the raw response
// text, which the add flow shows to the user as-is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("expenses api: status %d", e.StatusCode)
	}
	return e.Body
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is a minimal JSON client for GET/POST/DELETE on the collection.
// Calls have no timeout of their own; they end with the request context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the collection at baseURL, for example
// "http://localhost:5000/api/expenses".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the collection URL.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches the full expense set.
func (c *Client) List(ctx context.Context) ([]core.Expense, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out []core.Expense
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return out, nil
}

// Create posts one expense and returns the record the resource stored.
func (c *Client) Create(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("encode expense: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return core.Expense{}, fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return core.Expense{}, err
	}
	var created core.Expense
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil && !errors.Is(err, io.EOF) {
		return core.Expense{}, fmt.Errorf("decode created expense: %w", err)
	}
	return created, nil
}

// Delete removes the record with id. A 404 matches ErrNotFound.
func (c *Client) Delete(ctx context.Context, id core.ExpenseID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

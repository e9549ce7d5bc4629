// Package cloud talks to the hosted record store: a RestDB-style REST
// collection used as an append-only log of collection changes.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/swipetrack/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Client implements domain.RecordStore. Requests are never retried.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.RecordStore = (*Client)(nil)

// NewClient creates a client for a collection endpoint such as
// https://example.restdb.io/rest/user-entries
func NewClient(endpoint, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

func (c *Client) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteStore, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteStore, domain.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Warn("record collection not found, create it in the store dashboard", "endpoint", c.endpoint)
		return nil, fmt.Errorf("%w: collection not found", domain.ErrRemoteStore)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d - %s", domain.ErrRemoteStore, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// Append posts one record
func (c *Client) Append(ctx context.Context, rec domain.RemoteRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, c.endpoint, payload); err != nil {
		return err
	}
	return nil
}

// List returns up to max records for username, highest version first
func (c *Client) List(ctx context.Context, username string, max int) ([]domain.RemoteRecord, error) {
	filter, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	q := url.Values{}
	q.Set("q", string(filter))
	q.Set("max", strconv.Itoa(max))
	q.Set("sort", "version")
	q.Set("dir", "-1")

	body, err := c.do(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var records []domain.RemoteRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse records: %v", domain.ErrRemoteStore, err)
	}
	c.logger.Debug("listed remote records", "username", username, "count", len(records))
	return records, nil
}

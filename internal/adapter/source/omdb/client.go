package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mmcdole/swipetrack/internal/domain"
)

const (
	DefaultBaseURL = "https://www.omdbapi.com/"

	defaultTimeout = 15 * time.Second
	maxAttempts    = 3
	baseRetryDelay = 500 * time.Millisecond
)

// errServer marks a 5xx response so the request is retried
type errServer struct {
	status int
	body   string
}

func (e *errServer) Error() string {
	return fmt.Sprintf("server error: %d - %s", e.status, e.body)
}

// Client implements domain.TitleRepository against the OMDb API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ domain.TitleRepository = (*Client)(nil)

// NewClient creates a new OMDb API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
}

// doRequest performs a keyed GET against the API root.
// 5xx responses are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	query.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + query.Encode()

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return nil, retry.Unrecoverable(ctx.Err())
				}
				c.logger.Error("omdb request failed", "error", err)
				return nil, retry.Unrecoverable(fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err))
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("failed to read response: %w", err))
			}

			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				return nil, retry.Unrecoverable(domain.ErrUnauthorized)
			case resp.StatusCode >= 500:
				return nil, &errServer{status: resp.StatusCode, body: string(body)}
			case resp.StatusCode != http.StatusOK:
				c.logger.Error("omdb request error", "status", resp.StatusCode, "body", string(body))
				return nil, retry.Unrecoverable(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
			}
			return body, nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *errServer
			return errors.As(err, &se)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("omdb server error, will retry", "attempt", n+1, "maxAttempts", maxAttempts, "error", err)
		}),
	)
	if err != nil {
		var se *errServer
		if errors.As(err, &se) {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		return nil, err
	}
	return body, nil
}

// SearchTitles runs a keyword search restricted to one media type
func (c *Client) SearchTitles(ctx context.Context, query string, mediaType domain.MediaType, page int) ([]domain.MediaItem, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("s", query)
	q.Set("type", string(mediaType))
	q.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, q)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !resp.ok() {
		if isAuthError(resp.Error) {
			return nil, domain.ErrUnauthorized
		}
		// "Movie not found!" and "Too many results." are empty result sets
		c.logger.Debug("omdb search returned no results", "query", query, "type", mediaType, "reason", resp.Error)
		return []domain.MediaItem{}, nil
	}

	return MapSearchResults(resp.Search, mediaType), nil
}

// GetTitle fetches the full record for an IMDb id
func (c *Client) GetTitle(ctx context.Context, id string, mediaType domain.MediaType) (*domain.MediaItem, error) {
	q := url.Values{}
	q.Set("i", id)
	q.Set("plot", "short")

	body, err := c.doRequest(ctx, q)
	if err != nil {
		return nil, err
	}

	var detail TitleDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !detail.ok() {
		if isAuthError(detail.Error) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	item := MapTitle(detail, mediaType)
	return &item, nil
}

func isAuthError(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "api key") || strings.Contains(msg, "no api")
}

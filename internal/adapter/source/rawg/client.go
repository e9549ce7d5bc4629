package rawg

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
	DefaultBaseURL  = "https://api.rawg.io/api"
	DefaultPageSize = 10

	// ordering used for discovery pages
	orderByMetacritic = "-metacritic"

	defaultTimeout = 15 * time.Second
	maxAttempts    = 3
	baseRetryDelay = 500 * time.Millisecond
)

// statusError carries a non-200 status; 5xx are retried
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d - %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status >= 500 && e.status < 600
}

// Client implements domain.GameRepository against the RAWG API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ domain.GameRepository = (*Client)(nil)

// NewClient creates a new RAWG API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	query.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	attempt := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		c.logger.Debug("rawg request", "path", path, "query", query.Get("page"))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("rawg request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, domain.ErrUnauthorized
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &statusError{status: resp.StatusCode, body: string(body)}
		}
		return body, nil
	}

	body, err := retry.DoWithData(attempt,
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			return errors.As(err, &se) && se.retryable()
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("rawg server error, will retry", "attempt", n+1, "maxAttempts", maxAttempts, "path", path)
		}),
	)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			c.logger.Error("rawg request error", "status", se.status, "path", path)
			if se.retryable() {
				return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
			}
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) fetchGames(ctx context.Context, query url.Values) ([]domain.MediaItem, error) {
	body, err := c.doRequest(ctx, "/games", query)
	if err != nil {
		return nil, err
	}
	var resp GamesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapGames(resp.Results), nil
}

// ListGames returns one page of games ordered by metacritic score
func (c *Client) ListGames(ctx context.Context, page, pageSize int) ([]domain.MediaItem, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("ordering", orderByMetacritic)
	return c.fetchGames(ctx, q)
}

// SearchGames returns games matching a free-text query
func (c *Client) SearchGames(ctx context.Context, query string, pageSize int) ([]domain.MediaItem, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := url.Values{}
	q.Set("search", query)
	q.Set("page_size", strconv.Itoa(pageSize))
	return c.fetchGames(ctx, q)
}

package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"github.com/ping13/star-collector/pkg/clients"
	"github.com/ping13/star-collector/pkg/models"
)

// Logical sources the feed is built from.
const (
	EndpointFavourites = "/api/v1/favourites"
	EndpointBookmarks  = "/api/v1/bookmarks"
)

// ErrRateLimited signals an HTTP 429 from the instance. Collection loops
// treat it as a soft stop, not a failure.
var ErrRateLimited = errors.New("mastodon: rate limited")

type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mastodon returned status: %d", e.StatusCode)
}

// Client is a minimal Mastodon API client covering the status-list endpoints
// the feed needs. One request per call, no retries: page fetches must make
// exactly one attempt so rate-limit responses surface to the caller.
type Client struct {
	baseURL      string
	accessToken  string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
}

type Option func(*Client)

func NewClient(baseURL, accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		accessToken:  accessToken,
		client:       &http.Client{Timeout: 10 * time.Second},
		httpExecutor: clients.NewHTTPExecutor(clients.SingleAttemptConfig(15 * time.Second)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
	}
}

// PageQuery holds the cursor-based pagination parameters for a status-list
// request. MaxID is the ID of the last record of the previous page; empty for
// the first page.
type PageQuery struct {
	Limit int
	MaxID string
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.MaxID != "" {
		v.Set("max_id", q.MaxID)
	}
	return v
}

func (c *Client) doRequest(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.httpExecutor == nil {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	}

	return clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	})
}

// FetchPage retrieves one page of statuses from the given endpoint and
// normalizes it. Returns ErrRateLimited on 429 and an *APIError for other
// non-2xx statuses; an undecodable body is an error like any transport
// failure.
func (c *Client) FetchPage(ctx context.Context, endpoint string, q PageQuery) ([]models.PostRecord, error) {
	reqURL := c.baseURL + endpoint
	if query := q.values().Encode(); query != "" {
		reqURL += "?" + query
	}

	resp, err := c.doRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var statuses []Status
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]models.PostRecord, 0, len(statuses))
	for _, s := range statuses {
		record, err := s.ToPostRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

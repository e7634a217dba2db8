// Package yahoo fetches and normalizes NFL player data from the Yahoo
// Fantasy Sports API.
//
// Yahoo serves JSON renderings of its XML tree, so most payloads arrive as
// lists of single-key "fragments" rather than flat objects. The flattening
// helpers in this package collapse those into uniform records. Auth is
// OAuth2 authorization-code; rate limiting is a token bucket.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// BaseURL is the Yahoo Fantasy Sports v2 API root.
const BaseURL = "https://fantasysports.yahooapis.com/fantasy/v2"

// Client is the rate-limited HTTP client for all Yahoo Fantasy endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Yahoo API client. The token source supplies (and
// refreshes) the OAuth2 bearer token on every request.
func NewClient(baseURL string, src oauth2.TokenSource, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 30 * time.Second

	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// StatusError reports a non-success HTTP response from Yahoo.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("yahoo %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// DecodeError reports an unexpected response shape. Body carries the raw
// payload for diagnosis.
type DecodeError struct {
	Path string
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("yahoo %s: decode response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// get performs a rate-limited GET request and decodes the JSON document into
// a generic map. Yahoo's fragment lists rule out fixed struct decoding past
// the top level. The raw body is returned alongside the decoded document so
// shape errors can carry it.
func (c *Client) get(ctx context.Context, path string, params url.Values) (map[string]any, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("format", "json")
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, &DecodeError{Path: path, Body: body, Err: err}
	}

	return doc, body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
)

// StatusError is returned for any non-2xx response. URL never carries the
// query string, which may hold API keys.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Fetcher is what provider clients depend on.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) ([]byte, error)
}

var _ Fetcher = (*Client)(nil)

// Client wraps an http.Client to provide rate limiting and automatic retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   uint
	baseDelay  time.Duration
}

// NewClient creates a new rate-limited, retrying HTTP client. A
// requestsPerSecond of zero or less disables throttling.
func NewClient(httpClient *http.Client, requestsPerSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		attempts:   constants.DefaultRetryCount,
		baseDelay:  constants.DefaultRetryBase,
	}
}

// SetRetry overrides the attempt count and the linear backoff step.
func (c *Client) SetRetry(attempts uint, base time.Duration) {
	if attempts == 0 {
		attempts = 1
	}
	c.attempts = attempts
	c.baseDelay = base
}

// Do executes an HTTP request with rate-limiting and retries. Transport
// errors, 429 and 503 are retried; exhausted 429/503 come back as
// *StatusError. Request bodies are rewound between attempts.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempt := 0
	return retry.DoWithData(
		func() (*http.Response, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}

			r := req.WithContext(ctx)
			if attempt > 0 && req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, retry.Unrecoverable(err)
				}
				r = req.Clone(ctx)
				r.Body = body
			}
			attempt++

			resp, err := c.httpClient.Do(r)
			if err != nil {
				if ctx.Err() != nil {
					return nil, retry.Unrecoverable(ctx.Err())
				}
				return nil, err
			}
			if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
				retryAfter := parseRetryAfter(resp)
				_ = resp.Body.Close()
				return nil, &StatusError{URL: redact(req), StatusCode: resp.StatusCode, RetryAfter: retryAfter}
			}
			return resp, nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.baseDelay),
		retry.DelayType(c.backoff),
		retry.LastErrorOnly(true),
	)
}

// Fetch runs req and returns the response body of a 2xx response.
func (c *Client) Fetch(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxResponseBodySize))
		return nil, &StatusError{URL: redact(req), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", redact(req), err)
	}
	return body, nil
}

func (c *Client) backoff(n uint, err error, _ *retry.Config) time.Duration {
	wait := time.Duration(n+1) * c.baseDelay
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > wait {
		wait = se.RetryAfter
	}
	return wait
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}

func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

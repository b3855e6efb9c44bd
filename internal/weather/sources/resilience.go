package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls the retry budget for requests against the mock
// tree. Values come from SOURCE_* configuration; DefaultBackoff covers
// callers that have none.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff keeps a full retry cycle well under the 30s refresh
// timeout: 3 retries at 500ms doubling, capped at 5s.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (b BackoffConfig) validate() error {
	if b.MaxRetries < 0 {
		return errors.New("backoff max retries must not be negative")
	}
	if b.InitialInterval <= 0 {
		return errors.New("backoff initial interval must be positive")
	}
	return nil
}

// delay returns the wait before retry number attempt (0-based), doubling
// each step and capped at MaxInterval.
func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.MaxInterval > 0 && d >= b.MaxInterval {
			return b.MaxInterval
		}
	}
	return d
}

var (
	errRateLimited     = errors.New("mock api rate limited")
	errUpstreamFailure = errors.New("mock api server error")
	errCircuitOpen     = errors.New("mock api circuit open")
)

// retryClient issues JSON GETs with exponential backoff and one circuit
// breaker per endpoint, so a broken radar feed cannot take forecast
// fetches down with it.
type retryClient struct {
	client  *http.Client
	backoff BackoffConfig

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func newRetryClient(client *http.Client, backoff BackoffConfig) (*retryClient, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if err := backoff.validate(); err != nil {
		return nil, err
	}
	return &retryClient{
		client:   client,
		backoff:  backoff,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

func (c *retryClient) breaker(endpoint string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[endpoint]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mockapi-" + endpoint,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	c.breakers[endpoint] = cb
	return cb
}

// getJSON fetches rawURL through the endpoint's breaker and decodes the
// body into out. Rate limiting and 5xx responses are retried with backoff;
// an open breaker fails fast without burning the retry budget.
func (c *retryClient) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	cb := c.breaker(endpoint)

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := cb.Execute(func() (interface{}, error) {
			return c.fetch(ctx, rawURL)
		})
		if err == nil {
			if err := json.Unmarshal(body.([]byte), out); err != nil {
				return fmt.Errorf("decode %s: %w", rawURL, err)
			}
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return lastErr
		}

		timer := time.NewTimer(c.backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *retryClient) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, errUpstreamFailure
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}

package xmlship

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// Shifting the backoff base further than this would overflow a Duration;
// attempts are clamped before shifting.
const maxBackoffShift = 16

// Client delivers XML payloads to an HTTP endpoint.
//
// Post and Probe never return an error: transport failures are folded into
// the DeliveryOutcome so the caller can treat every attempt uniformly.
type Client struct {
	http *http.Client
	cfg  ClientConfig
}

// NewClient constructs a Client with defaults and optional settings.
func NewClient(opts ...ClientOption) *Client {
	var cfg ClientConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTransportConfig())
	}

	return &Client{
		http: httpClient,
		cfg:  cfg,
	}
}

// Post sends the payload to the endpoint (or the configured default) with a
// single attempt. Configured headers are merged with the per-call overrides;
// header names compare case-insensitively and the override wins.
func (c *Client) Post(ctx context.Context, endpoint, payload string, headers map[string]string) DeliveryOutcome {
	target := c.resolveEndpoint(endpoint)
	if target == "" {
		return transportFailure(ErrEndpointRequired)
	}

	return c.attempt(ctx, target, payload, headers)
}

// PostWithRetry repeatedly posts the payload until it succeeds, the outcome
// is classified as non-retryable, or maxAttempts is exhausted. The wait
// before retry number n is BackoffBase << n, doubling per attempt. A
// non-positive maxAttempts falls back to the configured default.
func (c *Client) PostWithRetry(ctx context.Context, endpoint, payload string, maxAttempts int) DeliveryOutcome {
	if maxAttempts <= 0 {
		maxAttempts = c.cfg.MaxAttempts
	}

	var outcome DeliveryOutcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome = c.Post(ctx, endpoint, payload, nil)
		if outcome.Success {
			c.cfg.Metrics.AddDelivered(1)

			return outcome
		}

		if c.cfg.Classifier(outcome) == RetryActionStop {
			c.cfg.Logger.Warn("delivery not retryable", "status", outcome.StatusCode)
			c.cfg.Metrics.AddFailed(1)

			return outcome
		}

		if attempt == maxAttempts {
			break
		}

		delay := c.backoff(attempt)
		c.cfg.Logger.Info("retrying delivery",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"status", outcome.StatusCode,
			"delay", delay,
		)
		c.cfg.Metrics.AddRetries(1)
		if err := sleep(ctx, delay); err != nil {
			c.cfg.Metrics.AddFailed(1)

			return outcome
		}
	}

	c.cfg.Logger.Warn("delivery attempts exhausted", "attempts", maxAttempts, "status", outcome.StatusCode)
	c.cfg.Metrics.AddFailed(1)

	return outcome
}

// Probe issues a GET to the endpoint (or the configured default) and reports
// whether it answered with a success status. Any failure yields false.
func (c *Client) Probe(ctx context.Context, endpoint string) bool {
	target := c.resolveEndpoint(endpoint)
	if target == "" {
		return false
	}

	attemptCtx, cancel := c.attemptContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", c.cfg.Accept)

	resp, err := c.http.Do(req)
	if err != nil {
		c.cfg.Logger.Debug("probe failed", "endpoint", target, "err", err)

		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return succeeded(resp.StatusCode)
}

func (c *Client) attempt(ctx context.Context, target, payload string, headers map[string]string) DeliveryOutcome {
	start := time.Now()
	defer func() {
		c.cfg.Metrics.ObserveAttemptDuration(time.Since(start))
	}()
	c.cfg.Metrics.AddAttempts(1)

	attemptCtx, cancel := c.attemptContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, target, strings.NewReader(payload))
	if err != nil {
		return transportFailure(err)
	}
	c.applyHeaders(req, headers)

	resp, err := c.http.Do(req)
	if err != nil {
		c.cfg.Logger.Warn("delivery attempt failed", "endpoint", target, "err", err)

		return transportFailure(err)
	}
	defer resp.Body.Close()

	body, err := readBounded(resp.Body, c.cfg.MaxBodyBytes)
	if err != nil {
		return transportFailure(err)
	}

	return DeliveryOutcome{
		Success:    succeeded(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Headers:    flattenHeaders(resp.Header),
	}
}

// applyHeaders layers defaults under configured headers under per-call
// overrides. http.Header canonicalizes names, which gives the required
// case-insensitive comparison for free.
func (c *Client) applyHeaders(req *http.Request, overrides map[string]string) {
	req.Header.Set("Content-Type", c.cfg.ContentType)
	req.Header.Set("Accept", c.cfg.Accept)
	for name, value := range c.cfg.Headers {
		req.Header.Set(name, value)
	}
	for name, value := range overrides {
		req.Header.Set(name, value)
	}
}

func (c *Client) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) resolveEndpoint(endpoint string) string {
	if strings.TrimSpace(endpoint) != "" {
		return endpoint
	}

	return c.cfg.Endpoint
}

// backoff returns the wait before the next attempt: base << attempt, so the
// first retry waits two base units, the second four, and so on.
func (c *Client) backoff(attempt int) time.Duration {
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}

	return c.cfg.BackoffBase << attempt
}

func succeeded(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}

	return out
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxBytes {
		return b[:maxBytes], nil
	}

	return b, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

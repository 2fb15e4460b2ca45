package xmlship

import (
	"net/http"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultBackoffBase  = time.Second
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 1 << 20
	defaultAccept       = "application/xml"
	defaultContentType  = "application/xml; charset=utf-8"
)

// ClientConfig defines how the Client builds and sends requests.
type ClientConfig struct {
	// Endpoint is the default target used when a call supplies none.
	Endpoint string
	// Timeout bounds each individual attempt, not the whole retry loop.
	Timeout time.Duration
	// Headers are applied to every request and may be overridden per call.
	Headers map[string]string
	// Accept is the media type requested from the endpoint.
	Accept string
	// ContentType labels the payload; the default signals XML.
	ContentType string
	// BackoffBase scales the exponential retry delay (base << attempt).
	BackoffBase time.Duration
	// MaxAttempts bounds PostWithRetry when the caller passes no limit.
	MaxAttempts int
	// MaxBodyBytes bounds how much of a response body is retained.
	MaxBodyBytes int64

	HTTPClient *http.Client
	Logger     Logger
	Metrics    Metrics
	Classifier RetryClassifier
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Accept == "" {
		c.Accept = defaultAccept
	}
	if c.ContentType == "" {
		c.ContentType = defaultContentType
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.Classifier == nil {
		c.Classifier = defaultRetryClassifier
	}

	return c
}

// ClientOption configures Client behavior.
type ClientOption func(*ClientConfig)

// WithDefaultEndpoint sets the endpoint used when a call supplies none.
func WithDefaultEndpoint(endpoint string) ClientOption {
	return func(c *ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithHeaders sets the static headers applied to every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *ClientConfig) {
		c.Headers = headers
	}
}

// WithAccept sets the Accept media type.
func WithAccept(mediaType string) ClientOption {
	return func(c *ClientConfig) {
		c.Accept = mediaType
	}
}

// WithContentType sets the payload content type.
func WithContentType(contentType string) ClientOption {
	return func(c *ClientConfig) {
		c.ContentType = contentType
	}
}

// WithBackoffBase sets the base unit of the exponential retry delay.
func WithBackoffBase(base time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.BackoffBase = base
	}
}

// WithMaxAttempts sets the default attempt limit for PostWithRetry.
func WithMaxAttempts(attempts int) ClientOption {
	return func(c *ClientConfig) {
		c.MaxAttempts = attempts
	}
}

// WithMaxBodyBytes bounds how much of a response body is retained.
func WithMaxBodyBytes(n int64) ClientOption {
	return func(c *ClientConfig) {
		c.MaxBodyBytes = n
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

// WithLogger sets the client logger.
func WithLogger(logger Logger) ClientOption {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the client metrics recorder.
func WithMetrics(metrics Metrics) ClientOption {
	return func(c *ClientConfig) {
		c.Metrics = metrics
	}
}

// WithRetryClassifier sets the retry decision hook.
func WithRetryClassifier(classifier RetryClassifier) ClientOption {
	return func(c *ClientConfig) {
		c.Classifier = classifier
	}
}

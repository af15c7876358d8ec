package httpclient

import (
	"net/http"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// Options configures the retrying client.
type Options struct {
	// UserAgent sets the User-Agent header for requests
	UserAgent string
	// MaxRetries sets the maximum number of retry attempts
	MaxRetries int
	// RetryWaitMin is the minimum time to wait between retries
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum time to wait between retries
	RetryWaitMax time.Duration
}

// DefaultOptions returns sensible default options for the client.
func DefaultOptions() Options {
	return Options{
		UserAgent:    "vidmerge/1.0",
		MaxRetries:   3,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 30 * time.Second,
	}
}

// New creates an *http.Client that retries transient failures.
//
// Network errors, 429 and 5xx responses are retried with exponential backoff.
// Once retries are exhausted the last response is handed back unchanged so the
// caller can report the server's own error body.
//
// It is meant for small idempotent exchanges such as OAuth token requests, not
// for streaming large request bodies.
func New(opts Options) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.MaxRetries
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil // Disable default logging

	std := client.StandardClient()
	if opts.UserAgent != "" {
		std.Transport = &userAgentTransport{
			base:      std.Transport,
			userAgent: opts.UserAgent,
		}
	}
	return std
}

// userAgentTransport sets the User-Agent header on requests that lack one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// Package httpclient builds the HTTP client shared by gateways and tools:
// retries on transient failures and an OpenTelemetry span per request.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Option configures the client built by New.
type Option func(*config)

type config struct {
	logger       *slog.Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRetryMax sets the maximum number of retries. Zero disables retries.
func WithRetryMax(n int) Option {
	return func(c *config) { c.retryMax = n }
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = min
		c.retryWaitMax = max
	}
}

// WithTimeout sets an overall per-request timeout. Zero means none, which is
// what streaming callers need.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New returns an *http.Client that retries 429 and 5xx responses with
// exponential backoff and traces every attempt. When retries are exhausted
// the last response is returned unchanged so callers can inspect its body.
func New(opts ...Option) *http.Client {
	cfg := config{
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, o := range opts {
		o(&cfg)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.retryMax
	rc.RetryWaitMin = cfg.retryWaitMin
	rc.RetryWaitMax = cfg.retryWaitMax
	rc.CheckRetry = stopOnCancel(retryablehttp.DefaultRetryPolicy)
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if cfg.logger != nil {
		rc.Logger = cfg.logger
	}

	std := rc.StandardClient()
	std.Timeout = cfg.timeout
	std.Transport = otelhttp.NewTransport(
		std.Transport,
		otelhttp.WithSpanNameFormatter(SpanName),
	)
	return std
}

// SpanName formats span names for outgoing requests as "METHOD host/path".
func SpanName(_ string, r *http.Request) string {
	return fmt.Sprintf("%s %s%s", r.Method, r.URL.Host, r.URL.Path)
}

func stopOnCancel(policy retryablehttp.CheckRetry) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return policy(ctx, resp, err)
	}
}

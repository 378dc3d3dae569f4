// Package backend is the HTTP client of the asset management backend.
// It serves report rows and lookups to the report service and receives
// the setup configuration.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"assetdesk/internal/core/apperror"
	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/domain/reports"
	"assetdesk/pkg/logger"
)

var tracer = otel.Tracer("assetdesk/backend")

// serviceName identifies the backend in errors and breaker logs.
const serviceName = "asset-backend"

// maxBodySize caps how much of a response is read.
const maxBodySize = 64 << 20

// Compile-time checks.
var _ reports.Source = (*Client)(nil)

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int

	// BreakerFailures consecutive failures open the breaker for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultConfig returns defaults for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		RateLimit:       20,
		RateBurst:       40,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// ErrorObserver is told about failed backend calls.
type ErrorObserver interface {
	UpstreamError(endpoint, reason string)
}

// Client calls the backend with the caller's bearer token.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	observer ErrorObserver
	log      *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger the client writes to.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithErrorObserver reports failed calls to o.
func WithErrorObserver(o ErrorObserver) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a backend client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Client errors say nothing about backend health.
			var se *statusError
			if errors.As(err, &se) {
				return se.status < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warnw("circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Default()
	}
	c.log = c.log.WithComponent("backend")
	return c, nil
}

// Fetch returns the records of a report source.
func (c *Client) Fetch(ctx context.Context, source string, params url.Values) ([]map[string]any, error) {
	path, ok := SourcePath(source)
	if !ok {
		return nil, fmt.Errorf("unknown report source %q", source)
	}
	body, err := c.call(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, path, body)
}

// Lookup returns a lookup list such as branches or vendors.
func (c *Client) Lookup(ctx context.Context, name string) ([]map[string]any, error) {
	path := LookupPath(name)
	body, err := c.call(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, path, body)
}

// SubmitSetup posts the onboarding configuration.
func (c *Client) SubmitSetup(ctx context.Context, cfg any) (map[string]any, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode setup configuration: %w", err)
	}
	body, err := c.call(ctx, http.MethodPost, SetupPath, nil, payload)
	if err != nil {
		return nil, err
	}
	m, err := decodeObject(body)
	if err != nil {
		c.observe(SetupPath, "decode")
		return nil, apperror.NewUpstream(http.StatusOK, "Backend returned an invalid response").WithCause(err)
	}
	return m, nil
}

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, HealthPath, nil, nil)
	return err
}

func (c *Client) list(ctx context.Context, path string, body []byte) ([]map[string]any, error) {
	items, err := decodeList(body)
	if err != nil {
		c.observe(path, "decode")
		c.log.WithContext(ctx).Warnw("backend response not understood", "path", path, "error", err)
		return nil, apperror.NewUpstream(http.StatusOK, "Backend returned an invalid response").WithCause(err)
	}
	return items, nil
}

// call performs one request through the limiter and the breaker and maps
// failures to application errors.
func (c *Client) call(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "backend "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("backend rate limit: %w", err)
		}
	}

	started := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, path, params, payload)
	})
	elapsed := time.Since(started)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, c.mapError(ctx, path, err, elapsed)
	}

	span.SetAttributes(attribute.Int("http.status_code", http.StatusOK))
	c.log.WithContext(ctx).Debugw("backend call", "method", method, "path", path, "duration_ms", elapsed.Milliseconds())
	return out.([]byte), nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := appctx.GetToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid := appctx.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{status: resp.StatusCode, body: body}
	}
	return body, nil
}

func (c *Client) mapError(ctx context.Context, path string, err error, elapsed time.Duration) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.observe(path, "circuit_open")
		return apperror.NewUpstreamUnavailable(serviceName).WithCause(err)
	}

	var se *statusError
	if errors.As(err, &se) {
		c.observe(path, fmt.Sprintf("status_%d", se.status))
		c.log.WithContext(ctx).Warnw("backend returned error status",
			"path", path, "status", se.status, "duration_ms", elapsed.Milliseconds())
		return se.appError(path)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	c.observe(path, "transport")
	c.log.WithContext(ctx).Errorw("backend call failed", "path", path, "error", err, "duration_ms", elapsed.Milliseconds())
	return apperror.NewUpstream(0, "Backend could not be reached").WithCause(err)
}

func (c *Client) observe(path, reason string) {
	if c.observer != nil {
		c.observer.UpstreamError(path, reason)
	}
}

// statusError is a non-2xx backend response.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend responded %d", e.status)
}

// appError maps the status: auth and not-found errors pass through,
// everything else becomes a gateway error carrying the status.
func (e *statusError) appError(path string) *apperror.AppError {
	msg := errorMessage(e.body)
	switch e.status {
	case http.StatusUnauthorized:
		if msg == "" {
			msg = "Backend rejected the credentials"
		}
		return apperror.NewUnauthorized(msg).WithCause(e)
	case http.StatusForbidden:
		if msg == "" {
			msg = "Access to this data is not allowed"
		}
		return apperror.NewForbidden(msg).WithCause(e)
	case http.StatusNotFound:
		return apperror.NewNotFound("backend resource", path).WithCause(e)
	}
	if msg == "" {
		msg = fmt.Sprintf("Backend responded with status %d", e.status)
	}
	return apperror.NewUpstream(e.status, msg).WithCause(e)
}

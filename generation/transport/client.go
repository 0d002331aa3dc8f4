package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/creativeflow/internal/ctxkeys"
	"github.com/BaSui01/creativeflow/types"
)

const instrumentationName = "github.com/BaSui01/creativeflow/generation/transport"

// maxBodyBytes 限制读取的响应体大小
const maxBodyBytes = 8 << 20

// AttemptObserver receives one event per HTTP attempt.
type AttemptObserver interface {
	ObserveAttempt(provider, method, route, outcome string, duration time.Duration)
}

// Response is a successful (2xx) provider response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// Client executes provider calls with per-attempt timeout and linear retry.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	cfg      Config
	policy   RetryPolicy
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
	tracer   trace.Tracer
	observer AttemptObserver
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its Timeout is ignored in favor of Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an attempt observer (e.g. the Prometheus collector).
func WithObserver(o AttemptObserver) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient 创建传输客户端
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:    cfg,
		policy: cfg.Policy(),
		http:   &http.Client{},
		logger: zap.NewNop(),
		tracer: otel.Tracer(instrumentationName),
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "transport"), zap.String("provider", cfg.Provider))
	return c, nil
}

// Config returns a copy of the resolved configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// DoJSON marshals in, executes the call and decodes the response into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, endpoint string, in, out any) error {
	resp, err := c.Do(ctx, method, endpoint, in)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return types.NewServiceError(types.ServiceCodeDecode, "invalid response body").
			WithCause(err).
			WithRetryable(false).
			WithProvider(c.cfg.Provider)
	}
	return nil
}

// Do executes method on endpoint (a path relative to BaseURL) with up to MaxRetries retries.
// Caller cancellation aborts immediately and returns the context error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	route := routeOf(endpoint)
	ctx, span := c.tracer.Start(ctx, "generation.transport",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.String("generation.provider", c.cfg.Provider),
		))
	defer span.End()
	if id, ok := ctxkeys.RequestID(ctx); ok {
		span.SetAttributes(attribute.String("generation.request_id", id))
	}

	var lastErr *types.Error
	attempt := 0
	for ; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.abort(ctx, span, err)
			}
		}

		start := time.Now()
		outcome := c.attempt(ctx, method, endpoint, payload)
		if ctx.Err() != nil {
			return nil, c.abort(ctx, span, ctx.Err())
		}

		d := Classify(outcome, endpoint)
		c.observe(method, route, d, time.Since(start))

		if d.Err == nil {
			span.SetAttributes(attribute.Int("http.status_code", outcome.StatusCode), attribute.Int("generation.attempts", attempt+1))
			return &Response{StatusCode: outcome.StatusCode, Header: outcome.Header, Body: outcome.Body, Attempts: attempt + 1}, nil
		}

		lastErr = d.Err.WithProvider(c.cfg.Provider)
		if !d.Retry || attempt >= c.policy.MaxRetries {
			break
		}

		delay := c.policy.Delay(attempt, d.RetryAfter)
		c.logger.Debug("重试中",
			zap.String("method", method),
			zap.String("route", route),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.policy.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, c.abort(ctx, span, ctx.Err())
		case <-timer.C:
		}
	}

	lastErr.Attempts = attempt + 1
	if lastErr.Retryable {
		c.logger.Warn("重试次数耗尽",
			zap.String("route", route),
			zap.Int("attempts", attempt+1),
			zap.Error(lastErr),
		)
	}
	span.SetAttributes(attribute.Int("generation.attempts", attempt+1))
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, string(lastErr.Code))
	return nil, lastErr
}

// attempt performs one HTTP round trip bounded by the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte) Outcome {
	actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out := Outcome{Timeout: c.cfg.Timeout}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(actx, method, c.cfg.BaseURL+endpoint, body)
	if err != nil {
		out.Err = err
		return out
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := ctxkeys.RequestID(ctx); ok {
		req.Header.Set(ctxkeys.RequestIDHeader, id)
	}
	switch {
	case c.cfg.APIKey == "":
	case c.cfg.APIKeyHeader != "":
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	default:
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		out.Err = err
		return out
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		out.Err = err
		return out
	}
	out.StatusCode = resp.StatusCode
	out.Header = resp.Header
	out.Body = data
	return out
}

func (c *Client) abort(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "cancelled")
	c.logger.Debug("请求被取消", zap.Error(err))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (c *Client) observe(method, route string, d Decision, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	if d.Err != nil {
		outcome = string(d.Err.Code)
	}
	c.observer.ObserveAttempt(c.cfg.Provider, method, route, outcome, elapsed)
}

package llm

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/log"
)

// ErrorType classifies an error for retry purposes
type ErrorType int

const (
	// ErrorTypeRetryable is a transient failure
	ErrorTypeRetryable ErrorType = iota
	// ErrorTypeNonRetryable is a permanent failure
	ErrorTypeNonRetryable
	// ErrorTypeUnknown is not retried
	ErrorTypeUnknown
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeRetryable:
		return "Retryable"
	case ErrorTypeNonRetryable:
		return "NonRetryable"
	default:
		return "Unknown"
	}
}

// HTTPStatusError is implemented by errors carrying an HTTP status code
type HTTPStatusError interface {
	error
	HTTPStatusCode() int
}

// statusCoder is the other common spelling of the same method
type statusCoder interface {
	error
	StatusCode() int
}

var contextLimitPhrases = []string{
	"context length",
	"context_length",
	"maximum context",
	"token limit",
	"tokens exceeded",
}

// ClassifyError decides whether a model call failure is worth retrying.
// Caller cancellation is never retried; deadlines and network errors are.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeNonRetryable
	}
	if errors.Is(err, context.Canceled) {
		return ErrorTypeNonRetryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeRetryable
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrorTypeRetryable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorTypeRetryable
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		return classifyHTTPStatus(statusErr.HTTPStatusCode())
	}
	var coder statusCoder
	if errors.As(err, &coder) {
		return classifyHTTPStatus(coder.StatusCode())
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range contextLimitPhrases {
		if strings.Contains(msg, phrase) {
			return ErrorTypeNonRetryable
		}
	}
	if strings.Contains(msg, "timeout") {
		return ErrorTypeRetryable
	}
	return ErrorTypeUnknown
}

func classifyHTTPStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrorTypeRetryable
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return ErrorTypeNonRetryable
	}
	switch {
	case statusCode >= 500:
		return ErrorTypeRetryable
	case statusCode >= 400:
		return ErrorTypeNonRetryable
	default:
		return ErrorTypeUnknown
	}
}

// CalculateBackoff returns min(base * 2^(attempt-1), max) seconds
func CalculateBackoff(attempt int, base, max float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := math.Min(base*math.Pow(2, float64(attempt-1)), max)
	return time.Duration(backoff * float64(time.Second))
}

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	Enabled     bool
	MaxAttempts int     // retries after the first call
	BackoffBase float64 // seconds
	BackoffMax  float64 // seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfigFrom(config.DefaultRetryConfig())
}

// RetryConfigFrom converts the file configuration
func RetryConfigFrom(c *config.RetryConfig) RetryConfig {
	if c == nil {
		c = config.DefaultRetryConfig()
	}
	return RetryConfig{
		Enabled:     c.Enabled,
		MaxAttempts: c.MaxAttempts,
		BackoffBase: c.BackoffBase,
		BackoffMax:  c.BackoffMax,
	}
}

// Validate validates the retry configuration
func (c *RetryConfig) Validate() error {
	return (&config.RetryConfig{
		Enabled:     c.Enabled,
		MaxAttempts: c.MaxAttempts,
		BackoffBase: c.BackoffBase,
		BackoffMax:  c.BackoffMax,
	}).Validate()
}

// WithRetry runs fn until it succeeds, fails permanently or runs out of attempts
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := WithRetryResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// WithRetryResult is WithRetry for functions returning a value.
func WithRetryResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	if !cfg.Enabled || cfg.MaxAttempts <= 0 {
		return fn()
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		kind := ClassifyError(err)
		if kind != ErrorTypeRetryable || attempt > cfg.MaxAttempts {
			return zero, err
		}

		backoff := CalculateBackoff(attempt, cfg.BackoffBase, cfg.BackoffMax)
		log.Debug("retry %d/%d in %v after %s error: %v", attempt, cfg.MaxAttempts, backoff, kind, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

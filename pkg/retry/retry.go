// Package retry retries transient failures with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"
)

// ErrInvalidAttempts is returned when a Config allows no attempts at all.
var ErrInvalidAttempts = errors.New("retry: MaxAttempts must be greater than 0")

// Config holds retry strategy configuration.
type Config struct {
	// MaxAttempts counts the initial attempt.
	MaxAttempts int
	// InitialDelay is the wait after the first failure.
	InitialDelay time.Duration
	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration
	// Multiplier grows the wait after every failure.
	Multiplier float64
	// RetryableErrors are case-insensitive substrings of retryable error
	// messages. Empty means every error is retryable.
	RetryableErrors []string
	// OnRetry, when set, is called before each wait with the 1-based number
	// of the failed attempt.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig returns default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// PostgresConfig returns the configuration used when dialing PostgreSQL.
func PostgresConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryableErrors = DefaultPostgresRetryableErrors()
	return cfg
}

// RedisConfig returns the configuration used when dialing Redis.
func RedisConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
		RetryableErrors: DefaultRedisRetryableErrors(),
	}
}

// DefaultPostgresRetryableErrors lists messages of transient PostgreSQL dial failures.
func DefaultPostgresRetryableErrors() []string {
	return append(networkErrors(),
		"server closed the connection",
		"too many connections",
		"database system is starting up",
		"no connection could be made",
		"network is unreachable",
		"connection timed out",
	)
}

// DefaultRedisRetryableErrors lists messages of transient Redis dial failures.
func DefaultRedisRetryableErrors() []string {
	return append(networkErrors(), "loading the dataset in memory")
}

func networkErrors() []string {
	return []string{"connection refused", "connection reset", "i/o timeout", "dial tcp"}
}

// Do calls fn until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions that produce a value.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		return zero, ErrInvalidAttempts
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		var result T
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryableError(err, cfg) || attempt == cfg.MaxAttempts {
			return zero, err
		}

		delay := jitter(cfg.backoff(attempt - 1))
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff returns InitialDelay * Multiplier^failures, capped at MaxDelay.
func (c Config) backoff(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(failures))
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

// jitter spreads delay by up to 10% in either direction.
func jitter(delay time.Duration) time.Duration {
	//nolint:gosec // jitter has no security requirement
	spread := float64(delay) * 0.1 * (rand.Float64()*2 - 1)
	return delay + time.Duration(spread)
}

// IsRetryableError reports whether err matches one of cfg.RetryableErrors.
func IsRetryableError(err error, cfg Config) bool {
	if err == nil {
		return false
	}
	if len(cfg.RetryableErrors) == 0 {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range cfg.RetryableErrors {
		if strings.Contains(msg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

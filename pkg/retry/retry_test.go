package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

// failTimes returns a function that fails n times with err before succeeding.
func failTimes(n int, err error) (func() error, *int) {
	calls := 0
	return func() error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestDo(t *testing.T) {
	transient := errors.New("dial tcp 127.0.0.1:5432: connection refused")

	tests := []struct {
		name      string
		cfg       Config
		failures  int
		err       error
		wantErr   error
		wantCalls int
	}{
		{name: "first try", cfg: fastConfig(3), failures: 0, wantCalls: 1},
		{name: "recovers", cfg: fastConfig(3), failures: 2, err: transient, wantCalls: 3},
		{name: "exhausted", cfg: fastConfig(3), failures: 5, err: transient, wantErr: transient, wantCalls: 3},
		{name: "single attempt", cfg: fastConfig(1), failures: 1, err: transient, wantErr: transient, wantCalls: 1},
		{
			name: "non-retryable stops early",
			cfg: func() Config {
				c := fastConfig(5)
				c.RetryableErrors = DefaultRedisRetryableErrors()
				return c
			}(),
			failures:  5,
			err:       errors.New("WRONGPASS invalid username-password pair"),
			wantErr:   errors.New("WRONGPASS invalid username-password pair"),
			wantCalls: 1,
		},
		{
			name: "retryable pattern",
			cfg: func() Config {
				c := fastConfig(5)
				c.RetryableErrors = DefaultPostgresRetryableErrors()
				return c
			}(),
			failures:  1,
			err:       errors.New("FATAL: the database system is starting up"),
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, calls := failTimes(tt.failures, tt.err)
			err := Do(context.Background(), tt.cfg, fn)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, *calls)
		})
	}
}

func TestDo_InvalidAttempts(t *testing.T) {
	called := false
	err := Do(context.Background(), Config{}, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidAttempts)
	assert.False(t, called)
}

func TestDo_ContextCancelled(t *testing.T) {
	t.Run("before first attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fn, calls := failTimes(0, nil)
		assert.ErrorIs(t, Do(ctx, fastConfig(3), fn), context.Canceled)
		assert.Zero(t, *calls)
	})

	t.Run("while waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		cfg := Config{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}
		fn, calls := failTimes(10, errors.New("i/o timeout"))

		start := time.Now()
		err := Do(ctx, cfg, fn)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, *calls)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("connection reset by peer")
		}
		return "PONG", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "PONG", got)
	assert.Equal(t, 2, attempts)

	got, err = DoWithResult(context.Background(), fastConfig(2), func() (string, error) {
		return "partial", errors.New("i/o timeout")
	})
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestDo_OnRetry(t *testing.T) {
	cfg := fastConfig(3)
	var seen []int
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		seen = append(seen, attempt)
		assert.Positive(t, delay)
		assert.EqualError(t, err, "dial tcp: connection refused")
	}

	fn, _ := failTimes(5, errors.New("dial tcp: connection refused"))
	require.Error(t, Do(context.Background(), cfg, fn))
	assert.Equal(t, []int{1, 2}, seen)
}

func TestBackoff(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for failures, expected := range want {
		assert.Equal(t, expected, cfg.backoff(failures), "failures=%d", failures)
	}
	assert.Equal(t, cfg.InitialDelay, cfg.backoff(-1))
}

func TestJitter(t *testing.T) {
	assert.Zero(t, jitter(0))
	for i := 0; i < 100; i++ {
		d := jitter(time.Second)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestIsRetryableError(t *testing.T) {
	pg := PostgresConfig()
	assert.False(t, IsRetryableError(nil, pg))
	assert.True(t, IsRetryableError(errors.New("anything"), DefaultConfig()))
	assert.True(t, IsRetryableError(errors.New("FATAL: sorry, TOO MANY CONNECTIONS already"), pg))
	assert.False(t, IsRetryableError(errors.New(`relation "circles" does not exist`), pg))

	redis := RedisConfig()
	assert.True(t, IsRetryableError(errors.New("LOADING Redis is loading the dataset in memory"), redis))
	assert.False(t, IsRetryableError(errors.New("too many connections"), redis))
}

func TestPresetConfigs(t *testing.T) {
	pg := PostgresConfig()
	assert.Equal(t, 5, pg.MaxAttempts)
	assert.Equal(t, time.Second, pg.InitialDelay)
	assert.Contains(t, pg.RetryableErrors, "dial tcp")

	redis := RedisConfig()
	assert.Equal(t, 3, redis.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, redis.InitialDelay)
	assert.Equal(t, 5*time.Second, redis.MaxDelay)
	assert.Contains(t, redis.RetryableErrors, "connection refused")
	assert.NotContains(t, redis.RetryableErrors, "too many connections")
}

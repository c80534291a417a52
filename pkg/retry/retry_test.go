package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	wantErr := errors.New("still down")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return wantErr
	})
	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 4, calls, "initial attempt plus MaxRetries")
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, &Config{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}, func() error {
		calls++
		cancel()
		return errors.New("failing")
	})
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("timeout")
		}
		return "connected", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "connected", got)
	assert.Equal(t, 2, calls)
}

func TestDoNilConfigUsesDefaults(t *testing.T) {
	err := Do(context.Background(), nil, func() error { return nil })
	require.NoError(t, err)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("dial tcp: connection refused")))
	assert.True(t, IsRetryable(errors.New("read: i/o timeout")))
	assert.True(t, IsRetryable(errors.New("pq: deadlock detected")))

	assert.False(t, IsRetryable(errors.New("syntax error at or near SELECT")))
	assert.False(t, IsRetryable(errors.New("password authentication failed")))
	assert.False(t, IsRetryable(nil))
}

package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/naran-storefront/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func TestDoWithResult(t *testing.T) {
	cfg := retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.LinearBackoff(time.Millisecond),
		ShouldRetry: func(err error) bool { return errors.Is(err, errTemporary) },
	}

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		got, err := retry.DoWithResult(t.Context(), cfg, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errTemporary
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 3, calls)
	})

	t.Run("PermanentErrorStops", func(t *testing.T) {
		permanent := errors.New("permanent")
		var calls int
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledWhileWaiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		slow := cfg
		slow.Backoff = retry.LinearBackoff(time.Hour)

		err := retry.Do(ctx, slow, func() error {
			cancel()
			return errTemporary
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errTemporary)
	})

	t.Run("ZeroConfigSingleAttempt", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), retry.RetryConfig{}, func() error {
			calls++
			return errTemporary
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

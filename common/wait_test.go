package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitForValue(t *testing.T) {
	t.Parallel()

	t.Run("ValueAfterSeveralTicks", func(t *testing.T) {
		t.Parallel()

		calls := 0
		value, err := WaitForValue(context.Background(), 0, time.Millisecond, func(context.Context) (*int, error) {
			calls++
			if calls < 3 {
				return nil, nil
			}
			return &calls, nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, *value)
	})

	t.Run("ErrorStopsWaiting", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		_, err := WaitForValue(context.Background(), 0, time.Millisecond, func(context.Context) (*int, error) {
			return nil, expected
		})
		require.ErrorIs(t, err, expected)
	})

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()

		_, err := WaitForValue(context.Background(), 20*time.Millisecond, time.Millisecond,
			func(context.Context) (*int, error) {
				return nil, nil
			})
		require.ErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := WaitForValue(ctx, 0, time.Millisecond, func(context.Context) (*int, error) {
			return nil, nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CallerDeadlineBeforeTimeout", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := WaitForValue(ctx, time.Minute, time.Millisecond, func(context.Context) (*int, error) {
			return nil, nil
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.NotErrorIs(t, err, ErrWaitTimeout)
	})
}

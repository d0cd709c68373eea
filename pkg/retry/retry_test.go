package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier(opts ...Option) *Retrier {
	base := []Option{
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(5 * time.Millisecond),
		WithJitter(0),
	}
	return New(append(base, opts...)...)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableError(t *testing.T) {
	calls := 0
	err := fastRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PlainErrorNotRetriedByDefault(t *testing.T) {
	calls := 0
	err := fastRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("plain")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("no such user")
	err := fastRetrier(WithRetryIf(func(error) bool { return true })).Do(
		context.Background(),
		func(context.Context) error {
			calls++
			return Permanent(sentinel)
		},
	)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		return Retryable(errors.New("always fails"))
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_RetryIfOverride(t *testing.T) {
	calls := 0
	err := fastRetrier(WithRetryIf(func(error) bool { return true })).Do(
		context.Background(),
		func(context.Context) error {
			calls++
			return errors.New("plain but retried")
		},
	)
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastRetrier().Do(ctx, func(context.Context) error {
		calls++
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	result, err := DoWithData(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, Retryable(errors.New("transient"))
		}
		return 42, nil
	}, WithInitialDelay(time.Millisecond), WithJitter(0))
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestDatabaseRetrier_RetriesPlainErrors(t *testing.T) {
	calls := 0
	err := DatabaseRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDatabaseRetrier_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	sentinel := errors.New("relation does not exist")
	err := DatabaseRetrier().Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(sentinel)
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestErrorWrapping(t *testing.T) {
	inner := errors.New("inner")

	assert.True(t, IsRetryable(Retryable(inner)))
	assert.True(t, IsPermanent(Permanent(inner)))
	assert.ErrorIs(t, Retryable(inner), inner)
	assert.ErrorIs(t, Permanent(inner), inner)
	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagemaker-deployer/internal/core/domain"
)

func TestRetryRead(t *testing.T) {
	t.Run("returns the value after transient failures", func(t *testing.T) {
		calls := 0
		v, err := retryRead(context.Background(), testRetry, "op", func() (int, error) {
			calls++
			if calls < 3 {
				return 0, fmt.Errorf("list: %w", domain.ErrTransient)
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		_, err := retryRead(context.Background(), testRetry, "op", func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := retryRead(context.Background(), testRetry, "op", func() (string, error) {
			calls++
			return "", domain.ErrTransient
		})
		assert.ErrorIs(t, err, domain.ErrTransient)
		assert.Equal(t, int(testRetry.MaxRetries)+1, calls)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		policy := RetryPolicy{InitialInterval: time.Hour, MaxInterval: time.Hour, MaxRetries: 3}
		calls := 0
		_, err := retryRead(ctx, policy, "op", func() (int, error) {
			calls++
			cancel()
			return 0, domain.ErrTransient
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.InitialInterval)
	assert.Equal(t, uint64(5), p.MaxRetries)
}

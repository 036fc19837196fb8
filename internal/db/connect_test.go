package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	o := apply([]Option{WithRetry(4, time.Millisecond)})
	err := retry(context.Background(), "test", o, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not ready")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	calls := 0
	o := apply([]Option{WithRetry(2, time.Millisecond)})
	err := retry(context.Background(), "test", o, func(context.Context) error {
		calls++
		return errors.New("refused")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
	assert.Contains(t, err.Error(), "refused")
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := apply([]Option{WithRetry(10, time.Hour)})
	err := retry(ctx, "test", o, func(context.Context) error {
		cancel()
		return errors.New("refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApply_Defaults(t *testing.T) {
	o := apply([]Option{WithRetry(0, time.Second)})
	assert.Equal(t, 1, o.attempts, "at least one attempt")
	assert.NotNil(t, o.log)
}

func TestConnect_BadURLs(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), "://not a url")
	assert.Error(t, err)
	_, err = NewRedisClient(context.Background(), "http://localhost:6379")
	assert.Error(t, err)
}

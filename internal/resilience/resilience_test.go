package resilience

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), testLogger(), "flaky", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryGivesUp(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), testLogger(), "broken", func() error {
		attempts++
		return errors.New("permanent")
	})

	require.Error(t, err)
	assert.GreaterOrEqual(t, attempts, 3)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Retry(ctx, testLogger(), "cancelled", func() error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestFetchPrimary(t *testing.T) {
	result, err := Fetch(context.Background(), testLogger(), "catalog",
		func(ctx context.Context) ([]string, error) { return []string{"a", "b"}, nil },
		func(ctx context.Context) ([]string, error) {
			t.Fatal("fallback should not run")
			return nil, nil
		},
	)

	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.Nil(t, result.PrimaryErr)
	assert.Equal(t, []string{"a", "b"}, result.Value)
}

func TestFetchFallsBack(t *testing.T) {
	primaryErr := errors.New("connection refused")
	result, err := Fetch(context.Background(), testLogger(), "catalog",
		func(ctx context.Context) ([]string, error) { return nil, primaryErr },
		func(ctx context.Context) ([]string, error) { return []string{"saved"}, nil },
	)

	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, primaryErr, result.PrimaryErr)
	assert.Equal(t, []string{"saved"}, result.Value)
}

func TestFetchBothFail(t *testing.T) {
	primaryErr := errors.New("connection refused")
	fallbackErr := errors.New("no snapshot")
	result, err := Fetch(context.Background(), testLogger(), "catalog",
		func(ctx context.Context) ([]string, error) { return nil, primaryErr },
		func(ctx context.Context) ([]string, error) { return nil, fallbackErr },
	)

	require.Error(t, err)
	assert.Equal(t, fallbackErr, err)
	assert.Equal(t, primaryErr, result.PrimaryErr)
	assert.Empty(t, result.Value)
}

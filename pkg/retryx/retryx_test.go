package retryx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/pkg/retryx"
)

func fastPolicy(attempts int, pred retryx.Predicate) retryx.Policy {
	return retryx.Policy{
		Attempts:    attempts,
		MinDelay:    time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		ShouldRetry: pred,
	}
}

func TestDo_FailingTaskInvokedExactlyAttempts(t *testing.T) {
	t.Parallel()
	calls := 0
	boom := errors.New("boom")
	always := func(error, int, int) bool { return true }
	err := retryx.Do(context.Background(), fastPolicy(3, always), func(context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_SuccessOnSecondAttemptInvokedTwice(t *testing.T) {
	t.Parallel()
	calls := 0
	always := func(error, int, int) bool { return true }
	err := retryx.Do(context.Background(), fastPolicy(3, always), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()
	calls := 0
	never := func(error, int, int) bool { return false }
	err := retryx.Do(context.Background(), fastPolicy(5, never), func(context.Context) error {
		calls++
		return errors.New("fatal")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsMeansOneInvocation(t *testing.T) {
	t.Parallel()
	calls := 0
	err := retryx.Do(context.Background(), retryx.Policy{}, func(context.Context) error {
		calls++
		return &retryx.HTTPStatusError{StatusCode: 500, Op: "test"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDefaultShouldRetry_Statuses(t *testing.T) {
	t.Parallel()
	retryable := []int{408, 409, 425, 429, 500, 502, 503, 599}
	for _, code := range retryable {
		assert.True(t, retryx.DefaultShouldRetry(&retryx.HTTPStatusError{StatusCode: code}, 1, 3), "status %d", code)
	}
	final := []int{400, 401, 403, 404, 422}
	for _, code := range final {
		assert.False(t, retryx.DefaultShouldRetry(&retryx.HTTPStatusError{StatusCode: code}, 1, 3), "status %d", code)
	}
}

func TestDefaultShouldRetry_ContextAndPlainErrors(t *testing.T) {
	t.Parallel()
	assert.True(t, retryx.DefaultShouldRetry(context.DeadlineExceeded, 1, 3))
	assert.True(t, retryx.DefaultShouldRetry(context.Canceled, 1, 3))
	assert.False(t, retryx.DefaultShouldRetry(errors.New("parse failure"), 1, 3))
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package retry

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/progress"
	"github.com/suparena/tablemigrate/storagemodels"
)

// waitLog records requested sleeps without sleeping.
type waitLog struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitLog) sleep(_ context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waits = append(w.waits, d)
	return nil
}

// failing returns an operation that fails k times and then succeeds.
func failing(k int, err error) (func(context.Context) error, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= k {
			return err
		}
		return nil
	}, &calls
}

var errThrottled = stderrors.New("throttled")

func TestExecuteSucceedsFirstTry(t *testing.T) {
	log := &waitLog{}
	rec := progress.NewRecorder()
	exec := NewExecutor(DefaultPolicy(), WithSleeper(log.sleep), WithReporter(rec))

	op, calls := failing(0, errThrottled)
	res := exec.Execute(context.Background(), "1", op)

	assert.Equal(t, storagemodels.Succeeded, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, log.waits)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{"item_succeeded"}, rec.Kinds("1"))
}

func TestExecuteRetryBound(t *testing.T) {
	const maxRetries = 5

	for k := 1; k < maxRetries; k++ {
		log := &waitLog{}
		exec := NewExecutor(Policy{MaxRetries: maxRetries, InitialWait: time.Second}, WithSleeper(log.sleep))

		op, calls := failing(k, errThrottled)
		res := exec.Execute(context.Background(), "1", op)

		assert.Equal(t, storagemodels.Succeeded, res.Outcome, "k=%d", k)
		assert.Equal(t, k+1, res.Attempts, "k=%d", k)
		assert.Equal(t, k+1, *calls, "k=%d", k)
		assert.Len(t, log.waits, k, "k=%d", k)
	}

	for _, k := range []int{maxRetries, maxRetries + 3} {
		log := &waitLog{}
		exec := NewExecutor(Policy{MaxRetries: maxRetries, InitialWait: time.Second}, WithSleeper(log.sleep))

		op, calls := failing(k, errThrottled)
		res := exec.Execute(context.Background(), "1", op)

		assert.Equal(t, storagemodels.FailedAfterRetries, res.Outcome, "k=%d", k)
		assert.Equal(t, maxRetries, res.Attempts, "k=%d", k)
		assert.Equal(t, maxRetries, *calls, "k=%d", k)
		assert.ErrorIs(t, res.Err, errThrottled)
	}
}

func TestExecuteBackoffGrowth(t *testing.T) {
	log := &waitLog{}
	rec := progress.NewRecorder()
	exec := NewExecutor(Policy{MaxRetries: 5, InitialWait: 5 * time.Second},
		WithSleeper(log.sleep), WithReporter(rec))

	op, _ := failing(100, errThrottled)
	res := exec.Execute(context.Background(), "2", op)

	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second, 80 * time.Second}
	assert.Equal(t, storagemodels.FailedAfterRetries, res.Outcome)
	assert.Equal(t, want, log.waits)
	assert.Equal(t, want, res.Waits)
	assert.Equal(t, []string{
		"attempt_failed", "attempt_failed", "attempt_failed", "attempt_failed", "attempt_failed", "item_failed",
	}, rec.Kinds("2"))
}

func TestExecuteMaxWaitCapsBackoff(t *testing.T) {
	log := &waitLog{}
	exec := NewExecutor(Policy{MaxRetries: 5, InitialWait: time.Second, MaxWait: 3 * time.Second},
		WithSleeper(log.sleep))

	op, _ := failing(100, errThrottled)
	exec.Execute(context.Background(), "1", op)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second}, log.waits)
}

func TestExecuteJitterStaysWithinBounds(t *testing.T) {
	log := &waitLog{}
	exec := NewExecutor(Policy{MaxRetries: 6, InitialWait: time.Second, Jitter: 0.5},
		WithSleeper(log.sleep))

	op, _ := failing(100, errThrottled)
	exec.Execute(context.Background(), "1", op)

	require.Len(t, log.waits, 6)
	base := time.Second
	for i, w := range log.waits {
		assert.LessOrEqual(t, w, base, "wait %d", i)
		assert.GreaterOrEqual(t, w, base/2, "wait %d", i)
		base *= 2
	}
}

func TestExecuteJitteredWaitsNeverDecrease(t *testing.T) {
	for run := 0; run < 50; run++ {
		log := &waitLog{}
		exec := NewExecutor(Policy{MaxRetries: 10, InitialWait: time.Second, MaxWait: 4 * time.Second, Jitter: 1},
			WithSleeper(log.sleep))

		op, _ := failing(100, errThrottled)
		exec.Execute(context.Background(), "1", op)

		require.Len(t, log.waits, 10)
		for i := 1; i < len(log.waits); i++ {
			assert.GreaterOrEqual(t, log.waits[i], log.waits[i-1], "run %d wait %d", run, i)
			assert.LessOrEqual(t, log.waits[i], 4*time.Second)
		}
	}
}

func TestJitterFloorIsPreviousSleep(t *testing.T) {
	exec := NewExecutor(Policy{MaxRetries: 2, InitialWait: time.Second, Jitter: 1})
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, exec.jitter(10*time.Second, 5*time.Second), 5*time.Second)
	}
}

func TestExecutePermanentErrorShortCircuits(t *testing.T) {
	log := &waitLog{}
	rec := progress.NewRecorder()
	exec := NewExecutor(DefaultPolicy(), WithSleeper(log.sleep), WithReporter(rec))

	op, calls := failing(100, errors.NewPermanentError(stderrors.New("item too large")))
	res := exec.Execute(context.Background(), "9", op)

	assert.Equal(t, storagemodels.Rejected, res.Outcome)
	assert.True(t, res.Outcome.Failed())
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, log.waits)
	assert.Equal(t, []string{"item_failed"}, rec.Kinds("9"))
}

func TestExecuteStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	exec := NewExecutor(DefaultPolicy(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		sleeps++
		cancel()
		return ctx.Err()
	}))

	op, calls := failing(100, errThrottled)
	res := exec.Execute(ctx, "1", op)

	assert.Equal(t, storagemodels.FailedAfterRetries, res.Outcome)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, sleeps)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.ErrorIs(t, res.Err, errThrottled)
}

func TestNewExecutorNormalizesPolicy(t *testing.T) {
	exec := NewExecutor(Policy{MaxRetries: 0, Jitter: 3})
	assert.Equal(t, 1, exec.Policy().MaxRetries)
	assert.Equal(t, 1.0, exec.Policy().Jitter)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}

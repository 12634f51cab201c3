/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package retry

import (
	"context"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/progress"
	"github.com/suparena/tablemigrate/storagemodels"
)

const (
	// DefaultMaxRetries is the default number of attempts per record.
	DefaultMaxRetries = 5
	// DefaultInitialWait is the wait after the first failed attempt.
	DefaultInitialWait = 5 * time.Second
)

// Policy configures the backoff schedule. The zero values of MaxWait and
// Jitter keep the plain doubling schedule.
type Policy struct {
	// MaxRetries is the total number of attempts. Values below 1 mean one attempt.
	MaxRetries int
	// InitialWait is the first backoff; each further wait doubles it.
	InitialWait time.Duration
	// MaxWait caps a single wait. Zero means uncapped.
	MaxWait time.Duration
	// Jitter is the fraction (0.0 to 1.0) of each wait that is randomly
	// shaved off, so records failing together do not retry in lockstep.
	Jitter float64
}

// DefaultPolicy returns the default schedule: 5 attempts starting at 5s.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:  DefaultMaxRetries,
		InitialWait: DefaultInitialWait,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Executor runs one idempotent operation with bounded exponential backoff.
// It holds no per-operation state and is safe for concurrent use.
type Executor struct {
	policy   Policy
	sleep    Sleeper
	reporter progress.Reporter
}

// Option configures an Executor.
type Option func(*Executor)

// WithSleeper replaces the sleep function, e.g. to record waits in tests.
func WithSleeper(s Sleeper) Option {
	return func(e *Executor) {
		e.sleep = s
	}
}

// WithReporter sets where attempts, successes and exhaustion are reported.
func WithReporter(r progress.Reporter) Option {
	return func(e *Executor) {
		e.reporter = r
	}
}

// NewExecutor creates an Executor for the given policy.
func NewExecutor(policy Policy, opts ...Option) *Executor {
	if policy.MaxRetries < 1 {
		policy.MaxRetries = 1
	}
	if policy.Jitter < 0 {
		policy.Jitter = 0
	}
	if policy.Jitter > 1 {
		policy.Jitter = 1
	}

	e := &Executor{
		policy:   policy,
		sleep:    SleepContext,
		reporter: progress.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the effective policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Execute attempts op until it succeeds or the attempts are used up. A wait
// follows every failed attempt, the last one included. Errors matching
// errors.ErrPermanent end the sequence at once with a Rejected outcome.
// Failures are reported through the result, never as a returned error.
func (e *Executor) Execute(ctx context.Context, id string, op func(ctx context.Context) error) storagemodels.ItemResult {
	result := storagemodels.ItemResult{ID: id}
	wait := e.policy.InitialWait
	var last time.Duration

	for result.Attempts < e.policy.MaxRetries {
		result.Attempts++

		err := op(ctx)
		if err == nil {
			result.Outcome = storagemodels.Succeeded
			result.Err = nil
			e.reporter.ItemSucceeded(id, result.Attempts)
			return result
		}
		result.Err = err

		if errors.IsPermanent(err) {
			result.Outcome = storagemodels.Rejected
			e.reporter.ItemFailed(result)
			return result
		}

		sleep := e.jitter(wait, last)
		last = sleep
		e.reporter.AttemptFailed(id, result.Attempts, sleep, err)
		result.Waits = append(result.Waits, sleep)

		if serr := e.sleep(ctx, sleep); serr != nil {
			result.Err = stderrors.Join(err, serr)
			break
		}
		wait = e.next(wait)
	}

	result.Outcome = storagemodels.FailedAfterRetries
	e.reporter.ItemFailed(result)
	return result
}

// next doubles wait, honouring MaxWait and saturating instead of overflowing.
func (e *Executor) next(wait time.Duration) time.Duration {
	doubled := wait * 2
	if doubled < wait {
		doubled = wait
	}
	if e.policy.MaxWait > 0 && doubled > e.policy.MaxWait {
		return e.policy.MaxWait
	}
	return doubled
}

// jitter shaves a random fraction off wait. The result never drops below the
// previous sleep, so waits stay non-decreasing.
func (e *Executor) jitter(wait, last time.Duration) time.Duration {
	if e.policy.MaxWait > 0 && wait > e.policy.MaxWait {
		wait = e.policy.MaxWait
	}
	if e.policy.Jitter == 0 || wait <= 0 {
		return wait
	}
	//nolint:gosec // jitter is not security sensitive
	shave := time.Duration(float64(wait) * e.policy.Jitter * rand.Float64())
	if wait-shave < last {
		return last
	}
	return wait - shave
}

/*
Package retry wraps a single idempotent operation in a bounded exponential
backoff loop.

The wait after the n-th failed attempt is InitialWait * 2^(n-1), optionally
capped by MaxWait and reduced by a random Jitter fraction:

	exec := retry.NewExecutor(retry.Policy{
	    MaxRetries:  5,
	    InitialWait: 5 * time.Second,
	})
	result := exec.Execute(ctx, id, func(ctx context.Context) error {
	    return dest.Upsert(ctx, record)
	})
	// result.Outcome is Succeeded, FailedAfterRetries or Rejected

Each call to Execute starts from a fresh backoff state, so one Executor can be
shared by concurrent workers.
*/
package retry

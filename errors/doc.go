/*
Package errors provides the error taxonomy of a migration run.

Errors fall into three classes:

  - Fatal: a source page fetch or destination provisioning failure. The run
    stops and transitions to Aborted.
  - Retryable: any destination upsert error not marked permanent. Retried with
    exponential backoff up to the configured limit.
  - Permanent: validation failures and errors wrapped with NewPermanentError.
    The record is rejected after a single attempt.

Common Errors:

	var (
	    ErrFetchFailed     = errors.New("page fetch failed")
	    ErrProvisionFailed = errors.New("destination provisioning failed")
	    ErrPermanent       = errors.New("permanent error")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrMissingID       = errors.New("record has no identifier")
	)

Usage:

	summary, err := migrator.Run(ctx)
	if err != nil {
	    if errors.IsFetchFailed(err) {
	        // summary holds everything migrated before the abort
	    }
	    return err
	}

	// Stop retrying a record the destination will never accept
	return errors.NewPermanentError(err)

The error types implement Unwrap where they wrap a cause, so errors.As can
still reach the underlying SDK error.
*/
package errors

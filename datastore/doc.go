/*
Package datastore defines the store boundaries used by a migration run.

	type Source interface {
	    Pages(params *storagemodels.QueryParams) PageIterator
	}

	type PageIterator interface {
	    HasMorePages() bool
	    NextPage(ctx context.Context) (storagemodels.Page, error)
	}

	type Destination interface {
	    EnsureContainer(ctx context.Context) error
	    Upsert(ctx context.Context, record storagemodels.Record) error
	}

Implementations:
  - ddb: DynamoDB source and destination
  - mock: In-memory implementations with failure injection for testing

A page fetch error is fatal to the run. An Upsert error is retried by the
caller unless it matches errors.ErrPermanent.
*/
package datastore

/*
Package ddb provides the DynamoDB source and destination of a migration.

The DynamodbDataStore supports:
  - Paginated PartiQL selects (ExecuteStatement with continuation tokens)
  - Idempotent upserts through PutItem
  - Destination provisioning (DescribeTable, CreateTable, table-exists waiter)
  - Classification of permanent upsert errors
  - Static credentials or the default credential chain, and custom endpoints

Paging:
Each page is bounded by the configured page size. The iteration order is the
order DynamoDB returns, which is not stable across runs:

	store, _ := ddb.NewDynamodbDataStore(ctx, conn, "source-table")
	pages := store.Pages(&storagemodels.QueryParams{PageSize: 1000})
	for pages.HasMorePages() {
	    page, err := pages.NextPage(ctx)
	    if err != nil {
	        return err // fatal, errors.IsFetchFailed(err) is true
	    }
	    ...
	}

Provisioning:

	dest := ddb.NewDynamodbDataStoreWithClient(client, "target-table",
	    ddb.WithPartitionKey("id", types.ScalarAttributeTypeS),
	)
	if err := dest.EnsureContainer(ctx); err != nil {
	    return err
	}

Set ConnectionConfig.MaxAttempts to 1 on the destination so that the caller's
retry executor alone decides how often an upsert is attempted.
*/
package ddb

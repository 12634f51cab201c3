/*
Package migrate drives a migration run from a source to a destination.

A run moves through NotStarted, then alternates between FetchingPage and
ProcessingPage, and ends in Completed once the source is exhausted or in
Aborted when provisioning or a page fetch fails. Records already written stay
written after an abort.

	m := migrate.New(source, dest, migrate.Config{
	    Query:  storagemodels.QueryParams{TableName: "source", PageSize: 1000},
	    Policy: retry.DefaultPolicy(),
	}, migrate.WithReporter(progress.NewLogger(log)))

	summary, err := m.Run(ctx)
	// summary.FailedIDs lists every record to re-run or fix by hand

Pages are always processed one after another. With Config.Workers above one,
the records of a page are spread over workers by identifier, so two records
with the same identifier are written by the same worker in page order.
*/
package migrate

/*
Package storagemodels defines the data structures shared by the migration components.

Key Types:

Record:
A raw DynamoDB item copied verbatim from the source to the destination:

	rec := storagemodels.NewRecord(map[string]types.AttributeValue{
	    "id":   &types.AttributeValueMemberS{Value: "42"},
	    "name": &types.AttributeValueMemberS{Value: "Oakville"},
	})
	id, err := rec.ID("id") // "42"

QueryParams:
Parameters of the paginated source query:

	params := &QueryParams{
	    TableName: "source-table",
	    PageSize:  1000,
	}
	params.EffectiveStatement() // SELECT * FROM "source-table"

RunSummary:
The aggregate result of one migration run. Summaries marshal to YAML and JSON
so they can be written as a run report:

	summary.Total, summary.Succeeded, summary.Failed, summary.FailedIDs

These types carry no behaviour beyond bookkeeping; the retry, paging and
orchestration logic live in their own packages.
*/
package storagemodels

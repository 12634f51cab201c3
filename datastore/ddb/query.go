/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"
	"github.com/suparena/tablemigrate/datastore"
	tmerrors "github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/storagemodels"
)

// StatementPaginator pages through the result of a PartiQL select using
// ExecuteStatement continuation tokens. Failed fetches are not retried.
type StatementPaginator struct {
	client     API
	input      sdk.ExecuteStatementInput
	nextToken  *string
	firstPage  bool
	pageNumber int
	logger     zerolog.Logger
}

// Pages starts a new paginated query. When params.TableName is empty the store's
// own table is queried.
func (d *DynamodbDataStore) Pages(params *storagemodels.QueryParams) datastore.PageIterator {
	p := *params
	if p.TableName == "" {
		p.TableName = d.tableName
	}
	return NewStatementPaginator(d.client, &p, d.logger)
}

// NewStatementPaginator creates a paginator for the given query.
func NewStatementPaginator(client API, params *storagemodels.QueryParams, logger zerolog.Logger) *StatementPaginator {
	statement := params.EffectiveStatement()
	return &StatementPaginator{
		client: client,
		input: sdk.ExecuteStatementInput{
			Statement:      aws.String(statement),
			Parameters:     params.Parameters,
			Limit:          aws.Int32(params.EffectivePageSize()),
			ConsistentRead: aws.Bool(params.ConsistentRead),
		},
		firstPage: true,
		logger:    logger,
	}
}

// HasMorePages reports whether NextPage can be called again.
func (p *StatementPaginator) HasMorePages() bool {
	return p.firstPage || (p.nextToken != nil && len(*p.nextToken) != 0)
}

// NextPage fetches the next page of records.
func (p *StatementPaginator) NextPage(ctx context.Context) (storagemodels.Page, error) {
	if !p.HasMorePages() {
		return storagemodels.Page{}, fmt.Errorf("no more pages available")
	}

	number := p.pageNumber + 1
	input := p.input
	input.NextToken = p.nextToken

	out, err := p.client.ExecuteStatement(ctx, &input)
	if err != nil {
		return storagemodels.Page{}, tmerrors.NewFetchError(number, fmt.Errorf("ExecuteStatement error: %w", err))
	}

	prevToken := p.nextToken
	p.firstPage = false
	p.nextToken = out.NextToken
	p.pageNumber = number

	// A repeated token would loop forever.
	if prevToken != nil && p.nextToken != nil && *prevToken == *p.nextToken {
		p.logger.Warn().Int("page", number).Msg("duplicate continuation token, stopping pagination")
		p.nextToken = nil
	}

	page := storagemodels.Page{
		Number:  number,
		Records: make([]storagemodels.Record, 0, len(out.Items)),
	}
	for _, item := range out.Items {
		page.Records = append(page.Records, storagemodels.NewRecord(item))
	}
	return page, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory stand-in for the DynamoDB client.
type fakeAPI struct {
	mu sync.Mutex

	// pages served by ExecuteStatement, in order
	pages [][]map[string]types.AttributeValue
	// failPage makes the fetch of this 1-based page fail
	failPage int
	fetchErr error

	statements []sdk.ExecuteStatementInput

	items  map[string]map[string]types.AttributeValue
	putErr error

	describeErrs  []error
	describeCalls int
	// keySchema and attrDefs are reported by DescribeTable
	keySchema   []types.KeySchemaElement
	attrDefs    []types.AttributeDefinition
	createInput *sdk.CreateTableInput
	createErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeAPI) ExecuteStatement(_ context.Context, in *sdk.ExecuteStatementInput, _ ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statements = append(f.statements, *in)

	idx := 0
	if in.NextToken != nil {
		n, err := strconv.Atoi(strings.TrimPrefix(*in.NextToken, "page-"))
		if err != nil {
			return nil, fmt.Errorf("bad token %q", *in.NextToken)
		}
		idx = n
	}
	if f.failPage == idx+1 {
		return nil, f.fetchErr
	}
	if idx >= len(f.pages) {
		return &sdk.ExecuteStatementOutput{}, nil
	}

	out := &sdk.ExecuteStatementOutput{Items: f.pages[idx]}
	if idx+1 < len(f.pages) {
		token := fmt.Sprintf("page-%d", idx+1)
		out.NextToken = &token
	}
	return out, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}
	id, ok := in.Item["id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("missing id")
	}
	f.items[id.Value] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeAPI) DescribeTable(_ context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.describeCalls
	f.describeCalls++
	if i < len(f.describeErrs) && f.describeErrs[i] != nil {
		return nil, f.describeErrs[i]
	}
	return &sdk.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:            in.TableName,
			TableStatus:          types.TableStatusActive,
			KeySchema:            f.keySchema,
			AttributeDefinitions: f.attrDefs,
		},
	}, nil
}

func (f *fakeAPI) CreateTable(_ context.Context, in *sdk.CreateTableInput, _ ...func(*sdk.Options)) (*sdk.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &sdk.CreateTableOutput{}, nil
}

func item(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":   &types.AttributeValueMemberS{Value: id},
		"name": &types.AttributeValueMemberS{Value: "record " + id},
	}
}

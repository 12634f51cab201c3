/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/tablemigrate/errors"
)

const (
	// DefaultPageSize is the maximum number of records per page.
	DefaultPageSize int32 = 1000
	// DefaultIDAttribute is the attribute holding the record's unique identifier.
	DefaultIDAttribute = "id"
)

// Record is one item of the source container. It is read-only once fetched.
type Record struct {
	// Item is the raw DynamoDB attribute map.
	Item map[string]types.AttributeValue
}

// NewRecord wraps a raw DynamoDB item.
func NewRecord(item map[string]types.AttributeValue) Record {
	return Record{Item: item}
}

// ID returns the value of the identifier attribute rendered as a string.
// Only string and number attributes qualify as identifiers.
func (r Record) ID(attr string) (string, error) {
	av, ok := r.Item[attr]
	if !ok || av == nil {
		return "", errors.NewMissingIDError(attr)
	}

	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		if v.Value == "" {
			return "", errors.NewMissingIDError(attr)
		}
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return v.Value, nil
	default:
		var s string
		if err := attributevalue.Unmarshal(av, &s); err != nil {
			return "", errors.NewValidationError(attr, fmt.Sprintf("unsupported identifier type %T", av))
		}
		return s, nil
	}
}

// Clone returns a shallow copy of the record so that the destination write
// never aliases the source page.
func (r Record) Clone() Record {
	item := make(map[string]types.AttributeValue, len(r.Item))
	for k, v := range r.Item {
		item[k] = v
	}
	return Record{Item: item}
}

// Page is an ordered batch of records returned by one fetch.
type Page struct {
	// Number is the 1-based position of the page in the iteration.
	Number  int
	Records []Record
}

// QueryParams defines the paginated source query.
type QueryParams struct {
	// TableName is the source DynamoDB table name.
	TableName string
	// Statement is a PartiQL select statement. Empty means select all.
	Statement string
	// Parameters are positional values for '?' placeholders in Statement.
	Parameters []types.AttributeValue
	// PageSize bounds the number of records per page.
	PageSize int32
	// ConsistentRead requests strongly consistent reads.
	ConsistentRead bool
	// CrossPartition allows the query to span partitions. PartiQL selects
	// without a key condition always fan out across partitions.
	CrossPartition bool
}

// EffectiveStatement returns Statement, or a select-all over TableName.
func (p QueryParams) EffectiveStatement() string {
	if strings.TrimSpace(p.Statement) != "" {
		return p.Statement
	}
	return fmt.Sprintf("SELECT * FROM %q", p.TableName)
}

// EffectivePageSize returns PageSize, or DefaultPageSize when unset.
func (p QueryParams) EffectivePageSize() int32 {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

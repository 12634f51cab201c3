/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/tablemigrate/storagemodels"
)

// PageIterator walks the result set of one source query. It is finite and
// cannot be rewound; a fresh iterator re-issues the query.
type PageIterator interface {
	HasMorePages() bool

	NextPage(ctx context.Context) (storagemodels.Page, error)
}

// Source is the read side of a migration.
type Source interface {
	Pages(params *storagemodels.QueryParams) PageIterator
}

// Destination is the write side of a migration.
type Destination interface {
	// EnsureContainer creates the destination container if it does not exist yet.
	EnsureContainer(ctx context.Context) error

	// Upsert inserts the record or overwrites the record with the same key.
	Upsert(ctx context.Context, record storagemodels.Record) error
}

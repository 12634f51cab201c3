/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides in-memory implementations of the store boundaries for testing
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/suparena/tablemigrate/datastore"
	"github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/storagemodels"
)

// DataStore is an in-memory source and destination. Records seeded with Add
// are served by Pages in insertion order; Upsert writes to a separate keyed
// view so a single mock can play either side of a migration.
type DataStore struct {
	mu          sync.RWMutex
	idAttribute string
	seeded      []storagemodels.Record
	keys        []string
	data        map[string]storagemodels.Record

	fetchErrors map[int]error
	ensureError error
	ensureCalls int

	upsertFunc  func(ctx context.Context, record storagemodels.Record) error
	failures    map[string]int
	failWith    map[string]error
	upsertCalls []string
}

// New creates a new mock DataStore keyed by the "id" attribute
func New() *DataStore {
	return &DataStore{
		idAttribute: storagemodels.DefaultIDAttribute,
		data:        make(map[string]storagemodels.Record),
		fetchErrors: make(map[int]error),
		failures:    make(map[string]int),
		failWith:    make(map[string]error),
	}
}

// WithIDAttribute sets the attribute used as the record key
func (m *DataStore) WithIDAttribute(attr string) *DataStore {
	m.idAttribute = attr
	return m
}

// WithFetchError makes fetching the given 1-based page fail
func (m *DataStore) WithFetchError(page int, err error) *DataStore {
	m.fetchErrors[page] = err
	return m
}

// WithEnsureError makes EnsureContainer fail
func (m *DataStore) WithEnsureError(err error) *DataStore {
	m.ensureError = err
	return m
}

// WithUpsertFunc intercepts every Upsert. Returning nil lets the write through.
func (m *DataStore) WithUpsertFunc(f func(ctx context.Context, record storagemodels.Record) error) *DataStore {
	m.upsertFunc = f
	return m
}

// FailTimes makes the next n upserts of id fail with err. A negative n fails forever.
func (m *DataStore) FailTimes(id string, n int, err error) *DataStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = n
	m.failWith[id] = err
	return m
}

// EnsureContainer records the call and returns the configured error
func (m *DataStore) EnsureContainer(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureCalls++
	return m.ensureError
}

// Upsert stores the record under its identifier, replacing any previous value
func (m *DataStore) Upsert(ctx context.Context, record storagemodels.Record) error {
	id, err := record.ID(m.idAttribute)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.upsertCalls = append(m.upsertCalls, id)
	if n, ok := m.failures[id]; ok && n != 0 {
		if n > 0 {
			m.failures[id] = n - 1
		}
		failErr := m.failWith[id]
		m.mu.Unlock()
		return failErr
	}
	m.mu.Unlock()

	if m.upsertFunc != nil {
		if err := m.upsertFunc(ctx, record); err != nil {
			return err
		}
	}

	m.put(id, record.Clone())
	return nil
}

// Pages returns an iterator over a snapshot of the seeded records
func (m *DataStore) Pages(params *storagemodels.QueryParams) datastore.PageIterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := append([]storagemodels.Record(nil), m.seeded...)

	fetchErrors := make(map[int]error, len(m.fetchErrors))
	for k, v := range m.fetchErrors {
		fetchErrors[k] = v
	}

	return &pageIterator{
		records:     snapshot,
		pageSize:    int(params.EffectivePageSize()),
		fetchErrors: fetchErrors,
		first:       true,
	}
}

// Helper methods for testing

// Add seeds records served by Pages. Records sharing an identifier are all
// kept, so duplicates and records without an identifier can be served.
func (m *DataStore) Add(records ...storagemodels.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeded = append(m.seeded, records...)
}

// Get returns the record stored under id
func (m *DataStore) Get(id string) (storagemodels.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := m.data[id]; ok {
		return r, nil
	}
	return storagemodels.Record{}, errors.NewNotFoundError("mock", id)
}

// IDs returns the identifiers of upserted records in first-write order
func (m *DataStore) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Count returns the number of upserted records
func (m *DataStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// UpsertCalls returns the identifiers of every Upsert call, failed ones included
func (m *DataStore) UpsertCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.upsertCalls))
	copy(out, m.upsertCalls)
	return out
}

// EnsureCalls returns how often EnsureContainer was called
func (m *DataStore) EnsureCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ensureCalls
}

func (m *DataStore) put(id string, record storagemodels.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		m.keys = append(m.keys, id)
	}
	m.data[id] = record
}

type pageIterator struct {
	records     []storagemodels.Record
	pageSize    int
	offset      int
	number      int
	first       bool
	fetchErrors map[int]error
}

func (p *pageIterator) HasMorePages() bool {
	return p.first || p.offset < len(p.records)
}

func (p *pageIterator) NextPage(ctx context.Context) (storagemodels.Page, error) {
	if !p.HasMorePages() {
		return storagemodels.Page{}, fmt.Errorf("no more pages available")
	}
	if err := ctx.Err(); err != nil {
		return storagemodels.Page{}, errors.NewFetchError(p.number+1, err)
	}

	number := p.number + 1
	if err, ok := p.fetchErrors[number]; ok {
		return storagemodels.Page{}, errors.NewFetchError(number, err)
	}

	end := p.offset + p.pageSize
	if end > len(p.records) {
		end = len(p.records)
	}
	page := storagemodels.Page{
		Number:  number,
		Records: append([]storagemodels.Record(nil), p.records[p.offset:end]...),
	}

	p.first = false
	p.offset = end
	p.number = number
	return page, nil
}

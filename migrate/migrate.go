/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package migrate

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/suparena/tablemigrate/datastore"
	"github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/progress"
	"github.com/suparena/tablemigrate/retry"
	"github.com/suparena/tablemigrate/storagemodels"
	"golang.org/x/sync/errgroup"
)

// Config describes one migration run.
type Config struct {
	// Query selects the source records.
	Query storagemodels.QueryParams
	// IDAttribute names the unique identifier attribute. Defaults to "id".
	IDAttribute string
	// Policy is the per-record retry policy. The zero value means
	// retry.DefaultPolicy.
	Policy retry.Policy
	// Workers is the number of concurrent upserts within a page. Values
	// below 2 process records strictly sequentially.
	Workers int
	// SourceName and DestinationName label the run in progress output.
	SourceName      string
	DestinationName string
}

// Migrator copies every record of a source into a destination.
type Migrator struct {
	source   datastore.Source
	dest     datastore.Destination
	cfg      Config
	reporter progress.Reporter
	logger   zerolog.Logger
	sleeper  retry.Sleeper
	newRunID func() string

	mu    sync.RWMutex
	state storagemodels.RunState
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithReporter sets the progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(m *Migrator) {
		m.reporter = r
	}
}

// WithLogger sets the logger for diagnostics that are not progress events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Migrator) {
		m.logger = logger
	}
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(s retry.Sleeper) Option {
	return func(m *Migrator) {
		m.sleeper = s
	}
}

// WithRunID overrides run identifier generation.
func WithRunID(f func() string) Option {
	return func(m *Migrator) {
		m.newRunID = f
	}
}

// New creates a Migrator.
func New(source datastore.Source, dest datastore.Destination, cfg Config, opts ...Option) *Migrator {
	if cfg.IDAttribute == "" {
		cfg.IDAttribute = storagemodels.DefaultIDAttribute
	}
	if cfg.Policy == (retry.Policy{}) {
		cfg.Policy = retry.DefaultPolicy()
	}
	m := &Migrator{
		source:   source,
		dest:     dest,
		cfg:      cfg,
		reporter: progress.Nop{},
		logger:   zerolog.Nop(),
		sleeper:  retry.SleepContext,
		newRunID: uuid.NewString,
		state:    storagemodels.StateNotStarted,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current run state.
func (m *Migrator) State() storagemodels.RunState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Migrator) setState(s storagemodels.RunState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Run provisions the destination, then migrates page by page until the source
// is exhausted. Per-record failures are recorded in the summary and never stop
// the run. A provisioning or page fetch failure aborts the run: the summary
// returned alongside the error covers everything processed before the abort.
func (m *Migrator) Run(ctx context.Context) (*storagemodels.RunSummary, error) {
	summary := storagemodels.NewRunSummary(m.newRunID())
	summary.StartedAt = strfmt.DateTime(time.Now().UTC())
	m.setState(storagemodels.StateNotStarted)
	m.reporter.RunStarted(summary.RunID, m.cfg.SourceName, m.cfg.DestinationName)

	exec := retry.NewExecutor(m.cfg.Policy,
		retry.WithSleeper(m.sleeper),
		retry.WithReporter(m.reporter))

	if err := m.dest.EnsureContainer(ctx); err != nil {
		if !errors.IsProvisionFailed(err) {
			err = errors.NewProvisionError(m.cfg.DestinationName, err)
		}
		return m.abort(summary, err)
	}

	pages := m.source.Pages(&m.cfg.Query)
	fetched := 0
	for pages.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return m.abort(summary, fmt.Errorf("migration interrupted: %w", err))
		}

		m.setState(storagemodels.StateFetchingPage)
		page, err := pages.NextPage(ctx)
		if err != nil {
			if !errors.IsFetchFailed(err) {
				err = errors.NewFetchError(fetched+1, err)
			}
			return m.abort(summary, err)
		}
		fetched++

		m.setState(storagemodels.StateProcessingPage)
		m.reporter.PageStarted(page.Number)
		results := m.processPage(ctx, exec, page)
		ps := summary.AddPage(page.Number, results)
		m.reporter.PageFinished(ps)

		if len(results) < len(page.Records) {
			return m.abort(summary, fmt.Errorf("migration interrupted on page %d: %w", page.Number, ctx.Err()))
		}
	}

	m.setState(storagemodels.StateCompleted)
	m.finish(summary, storagemodels.StateCompleted)
	return summary, nil
}

func (m *Migrator) abort(summary *storagemodels.RunSummary, err error) (*storagemodels.RunSummary, error) {
	m.logger.Debug().Err(err).Str("runId", summary.RunID).Msg("aborting migration")
	summary.AbortErr = err.Error()
	m.setState(storagemodels.StateAborted)
	m.finish(summary, storagemodels.StateAborted)
	return summary, err
}

func (m *Migrator) finish(summary *storagemodels.RunSummary, state storagemodels.RunState) {
	summary.State = state
	summary.FinishedAt = strfmt.DateTime(time.Now().UTC())
	m.reporter.RunFinished(summary)
}

// task is one record of a page together with its position.
type task struct {
	index  int
	id     string
	record storagemodels.Record
}

// processPage migrates the records of one page and returns their results in
// page order. Records skipped because ctx ended mid-page are left out.
func (m *Migrator) processPage(ctx context.Context, exec *retry.Executor, page storagemodels.Page) []storagemodels.ItemResult {
	results := make([]storagemodels.ItemResult, len(page.Records))
	done := make([]bool, len(page.Records))

	workers := m.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(page.Records) {
		workers = len(page.Records)
	}
	shards := make([][]task, workers)

	for i, rec := range page.Records {
		id, err := rec.ID(m.cfg.IDAttribute)
		if err != nil {
			results[i] = storagemodels.ItemResult{
				ID:      fmt.Sprintf("page-%d#%d", page.Number, i),
				Outcome: storagemodels.Rejected,
				Err:     err,
			}
			done[i] = true
			m.reporter.ItemFailed(results[i])
			continue
		}
		shard := shardFor(id, workers)
		shards[shard] = append(shards[shard], task{index: i, id: id, record: rec})
	}

	// Each identifier maps to exactly one shard and every shard runs in page
	// order, so writes of a duplicate identifier never overlap and the later
	// record wins.
	var g errgroup.Group
	for _, shard := range shards {
		shard := shard
		g.Go(func() error {
			for _, t := range shard {
				if ctx.Err() != nil {
					return nil
				}
				rec := t.record
				results[t.index] = exec.Execute(ctx, t.id, func(ctx context.Context) error {
					return m.dest.Upsert(ctx, rec.Clone())
				})
				done[t.index] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	completed := results[:0]
	for i, r := range results {
		if done[i] {
			completed = append(completed, r)
		}
	}
	return completed
}

func shardFor(id string, workers int) int {
	if workers <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(workers))
}

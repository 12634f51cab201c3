/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// Outcome is the terminal result of migrating one record.
type Outcome int

const (
	// Succeeded means the record was upserted into the destination.
	Succeeded Outcome = iota
	// FailedAfterRetries means every allowed attempt failed.
	FailedAfterRetries
	// Rejected means the destination refused the record with a permanent error.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case FailedAfterRetries:
		return "failed_after_retries"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome counts as a per-item failure.
func (o Outcome) Failed() bool {
	return o != Succeeded
}

// ItemResult describes how a single record was handled.
type ItemResult struct {
	ID       string
	Outcome  Outcome
	Attempts int
	// Waits holds the backoff durations slept after each failed attempt.
	Waits []time.Duration
	// Err is the last error seen, nil on success.
	Err error
}

// RunState is the lifecycle state of a migration run.
type RunState string

const (
	StateNotStarted     RunState = "not_started"
	StateFetchingPage   RunState = "fetching_page"
	StateProcessingPage RunState = "processing_page"
	StateCompleted      RunState = "completed"
	StateAborted        RunState = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s RunState) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// PageSummary holds the per-page counts.
type PageSummary struct {
	Number    int `json:"number" yaml:"number"`
	Total     int `json:"total" yaml:"total"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// RunSummary is the aggregate result of one migration run.
type RunSummary struct {
	RunID      string          `json:"runId" yaml:"runId"`
	State      RunState        `json:"state" yaml:"state"`
	Total      int             `json:"total" yaml:"total"`
	Succeeded  int             `json:"succeeded" yaml:"succeeded"`
	Failed     int             `json:"failed" yaml:"failed"`
	FailedIDs  []string        `json:"failedIds" yaml:"failedIds"`
	Pages      []PageSummary   `json:"pages" yaml:"pages"`
	StartedAt  strfmt.DateTime `json:"startedAt" yaml:"startedAt"`
	FinishedAt strfmt.DateTime `json:"finishedAt" yaml:"finishedAt"`
	AbortErr   string          `json:"abortError,omitempty" yaml:"abortError,omitempty"`
}

// NewRunSummary creates an empty summary in the NotStarted state.
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		State:     StateNotStarted,
		FailedIDs: []string{},
	}
}

// AddPage folds the results of one processed page into the summary,
// keeping failed identifiers in processing order.
func (s *RunSummary) AddPage(number int, results []ItemResult) PageSummary {
	ps := PageSummary{Number: number, Total: len(results)}
	for _, r := range results {
		if r.Outcome.Failed() {
			ps.Failed++
			s.FailedIDs = append(s.FailedIDs, r.ID)
			continue
		}
		ps.Succeeded++
	}

	s.Total += ps.Total
	s.Succeeded += ps.Succeeded
	s.Failed += ps.Failed
	s.Pages = append(s.Pages, ps)
	return ps
}

// Duration returns the wall-clock time of the run.
func (s *RunSummary) Duration() time.Duration {
	return time.Time(s.FinishedAt).Sub(time.Time(s.StartedAt))
}

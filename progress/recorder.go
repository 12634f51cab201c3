/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package progress

import (
	"sync"
	"time"

	"github.com/suparena/tablemigrate/storagemodels"
)

// Event is one recorded progress notification.
type Event struct {
	Kind    string
	Page    int
	ID      string
	Attempt int
	Wait    time.Duration
	Err     error
}

// Recorder keeps every event in memory. Used by tests and by callers that
// want to inspect a run after the fact.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	summary *storagemodels.RunSummary
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// RunStarted records a run_started event keyed by run id.
func (r *Recorder) RunStarted(runID, _, _ string) {
	r.add(Event{Kind: "run_started", ID: runID})
}

// PageStarted records a page_started event.
func (r *Recorder) PageStarted(page int) {
	r.add(Event{Kind: "page_started", Page: page})
}

// PageFinished records a page_finished event.
func (r *Recorder) PageFinished(summary storagemodels.PageSummary) {
	r.add(Event{Kind: "page_finished", Page: summary.Number})
}

// AttemptFailed records the attempt number, wait and error.
func (r *Recorder) AttemptFailed(id string, attempt int, wait time.Duration, err error) {
	r.add(Event{Kind: "attempt_failed", ID: id, Attempt: attempt, Wait: wait, Err: err})
}

// ItemSucceeded records the number of attempts it took.
func (r *Recorder) ItemSucceeded(id string, attempts int) {
	r.add(Event{Kind: "item_succeeded", ID: id, Attempt: attempts})
}

// ItemFailed records the final attempt count and error.
func (r *Recorder) ItemFailed(result storagemodels.ItemResult) {
	r.add(Event{Kind: "item_failed", ID: result.ID, Attempt: result.Attempts, Err: result.Err})
}

// RunFinished records the event and keeps the summary for Summary.
func (r *Recorder) RunFinished(summary *storagemodels.RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "run_finished", ID: summary.RunID})
	r.summary = summary
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events, optionally filtered to one id.
func (r *Recorder) Kinds(id string) []string {
	var out []string
	for _, e := range r.Events() {
		if id == "" || e.ID == id {
			out = append(out, e.Kind)
		}
	}
	return out
}

// Summary returns the summary passed to RunFinished, if any.
func (r *Recorder) Summary() *storagemodels.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package progress

import (
	"time"

	"github.com/suparena/tablemigrate/storagemodels"
)

// Reporter observes a migration run. Implementations must be safe for
// concurrent use when the migrator runs with more than one worker.
type Reporter interface {
	RunStarted(runID, source, destination string)

	PageStarted(page int)

	PageFinished(summary storagemodels.PageSummary)

	// AttemptFailed is called after a failed upsert that will be retried after wait.
	AttemptFailed(id string, attempt int, wait time.Duration, err error)

	ItemSucceeded(id string, attempts int)

	ItemFailed(result storagemodels.ItemResult)

	RunFinished(summary *storagemodels.RunSummary)
}

// Nop discards all progress events.
type Nop struct{}

func (Nop) RunStarted(string, string, string)               {}
func (Nop) PageStarted(int)                                 {}
func (Nop) PageFinished(storagemodels.PageSummary)          {}
func (Nop) AttemptFailed(string, int, time.Duration, error) {}
func (Nop) ItemSucceeded(string, int)                       {}
func (Nop) ItemFailed(storagemodels.ItemResult)             {}
func (Nop) RunFinished(*storagemodels.RunSummary)           {}

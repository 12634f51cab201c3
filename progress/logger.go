/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/suparena/tablemigrate/storagemodels"
)

const (
	// FormatConsole renders one human-readable line per event.
	FormatConsole = "console"
	// FormatJSON renders one JSON object per event.
	FormatJSON = "json"
)

// NewZerolog builds the logger used across the tool.
func NewZerolog(w io.Writer, format string, level zerolog.Level) (zerolog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
		return zerolog.New(cw).Level(level).With().Timestamp().Logger(), nil
	case FormatJSON:
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}

// Logger reports progress as zerolog events.
type Logger struct {
	log zerolog.Logger
}

// NewLogger creates a Reporter writing to log.
func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

// RunStarted logs the run id and both container names.
func (l *Logger) RunStarted(runID, source, destination string) {
	l.log.Info().
		Str("event", "run_started").
		Str("runId", runID).
		Str("source", source).
		Str("destination", destination).
		Msg("starting migration")
}

// PageStarted logs the "[START] Processing page N" line.
func (l *Logger) PageStarted(page int) {
	l.log.Info().
		Str("event", "page_started").
		Int("page", page).
		Msgf("[START] Processing page %d", page)
}

// PageFinished logs the "[END] Processing page N" line with the page counts.
func (l *Logger) PageFinished(summary storagemodels.PageSummary) {
	l.log.Info().
		Str("event", "page_finished").
		Int("page", summary.Number).
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msgf("[END] Processing page %d", summary.Number)
}

// AttemptFailed logs a failed attempt and the wait before the next one.
func (l *Logger) AttemptFailed(id string, attempt int, wait time.Duration, err error) {
	l.log.Warn().
		Str("event", "attempt_failed").
		Str("id", id).
		Int("attempt", attempt).
		Dur("wait", wait).
		Err(err).
		Msgf("Error occurred while transferring item with id %s. Retrying in %s...", id, wait)
}

// ItemSucceeded logs a transferred record.
func (l *Logger) ItemSucceeded(id string, attempts int) {
	l.log.Info().
		Str("event", "item_succeeded").
		Str("id", id).
		Int("attempts", attempts).
		Msgf("Item with id %s transferred successfully.", id)
}

// ItemFailed logs a record that was rejected or ran out of attempts.
func (l *Logger) ItemFailed(result storagemodels.ItemResult) {
	l.log.Error().
		Str("event", "item_failed").
		Str("id", result.ID).
		Str("outcome", result.Outcome.String()).
		Int("attempts", result.Attempts).
		Err(result.Err).
		Msgf("Failed to transfer item with id %s after %d attempts.", result.ID, result.Attempts)
}

// RunFinished logs the final counts. Aborted runs are logged at error level.
func (l *Logger) RunFinished(summary *storagemodels.RunSummary) {
	ev := l.log.Info()
	if summary.State == storagemodels.StateAborted {
		ev = l.log.Error().Str("abortError", summary.AbortErr)
	}
	ev.Str("event", "run_finished").
		Str("runId", summary.RunID).
		Str("state", string(summary.State)).
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Strs("failedIds", summary.FailedIDs).
		Dur("duration", summary.Duration()).
		Msgf("%d records permanently failed", summary.Failed)
}

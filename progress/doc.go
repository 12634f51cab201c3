/*
Package progress reports what a migration run is doing.

Reporter is the observer interface the migrator and the retry executor call
into. Three implementations are provided:

  - Logger: zerolog events, rendered as console lines or JSON
  - Recorder: keeps events in memory for inspection
  - Nop: discards everything

Console output follows the run page by page:

	[START] Processing page 1
	Item with id 1 transferred successfully.
	Error occurred while transferring item with id 2. Retrying in 5s...
	[END] Processing page 1
	1 records permanently failed

WriteReport serializes the final RunSummary as YAML so a later run or a human
can target exactly the failed identifiers.
*/
package progress

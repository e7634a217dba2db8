// Package ingest orchestrates one ingestion run: fetch players from Yahoo,
// flatten, snapshot the raw mapping, and write the relational batch.
package ingest

import "fmt"

// Result tracks counts and errors from one ingestion run.
type Result struct {
	RunID          string
	Season         int
	SnapshotPath   string
	PlayersFetched int
	PlayersSkipped int
	PlayersStored  int
	StatRows       int
	Errors         []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"season=%d fetched=%d skipped=%d stored=%d stat_rows=%d errors=%d",
		r.Season, r.PlayersFetched, r.PlayersSkipped,
		r.PlayersStored, r.StatRows, len(r.Errors),
	)
}

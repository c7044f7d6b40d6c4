package archive

import (
	"time"

	"radiosync/internal/match"
	"radiosync/internal/scraper"
)

// Status is the outcome recorded for one processed song.
type Status string

const (
	// StatusFound means the spin matched the catalog above threshold.
	// It does not imply the playlist add succeeded; a failed add keeps
	// the match and records the error on the entry.
	StatusFound         Status = "found"
	StatusLowConfidence Status = "low_confidence"
	StatusNotFound      Status = "not_found"
	StatusDuplicate     Status = "duplicate"
)

// Entry is one processed song and its outcome. Created once per record and
// never mutated; the ledger owns its on-disk representation.
type Entry struct {
	Song       scraper.Song
	Match      *match.Result // nil when no candidate was found
	Status     Status
	Err        string
	ArchivedAt time.Time
}

// Stats are the running per-day counters. Derived: always recomputable by
// replaying the day's rows, and the replay wins over the cached summary
// block in the file. Found counts catalog matches, not successful
// playlist adds.
type Stats struct {
	Total         int `json:"total"`
	Found         int `json:"found"`
	NotFound      int `json:"not_found"`
	LowConfidence int `json:"low_confidence"`
	Duplicates    int `json:"duplicates"`
}

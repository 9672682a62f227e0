package domain

import "time"

// SyncOptions controls auto-registration during a run.
type SyncOptions struct {
	// AutoAddTopTargets registers previously unseen domains whose
	// recommendation classifies as critical.
	AutoAddTopTargets bool
	// AutoAddNeeded registers previously unseen domains whose
	// recommendation classifies as high (needs investigation).
	AutoAddNeeded bool
	// SyncAllFlagged registers every flagged-feed domain regardless of
	// recommendation.
	SyncAllFlagged bool
}

// DefaultSyncOptions returns the shipped defaults: both targeted
// auto-add modes on, blanket flagged-feed registration off.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		AutoAddTopTargets: true,
		AutoAddNeeded:     true,
		SyncAllFlagged:    false,
	}
}

const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncLog is the persisted per-run summary. Exactly one row is written
// per run, success or failure.
type SyncLog struct {
	ID           string    `db:"id"`
	Status       string    `db:"status"`
	SitesAdded   int       `db:"sites_added"`
	SitesUpdated int       `db:"sites_updated"`
	Error        string    `db:"error"`
	StartedAt    time.Time `db:"started_at"`
	FinishedAt   time.Time `db:"finished_at"`
}

// SyncResult is returned to the caller after a run. Counts reflect
// committed work even when the run failed partway through.
type SyncResult struct {
	Success               bool
	SitesAdded            int
	SitesUpdated          int
	NotesImported         int
	DomainChangesDetected int
	Errors                []string
	Duration              time.Duration
	Timestamp             time.Time
}

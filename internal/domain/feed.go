package domain

import "time"

// Report is the most recent periodic analysis report from the
// monitoring source.
type Report struct {
	ID          int64
	Period      string
	Status      string
	DomainCount int
	CreatedAt   time.Time
}

// AnalysisResult is one per-domain row of a report. Traffic figures
// arrive already formatted for display; the engine compares them as
// opaque strings.
type AnalysisResult struct {
	ID             int64
	ReportID       int64
	Domain         string
	Recommendation string
	TrafficMonthly string
	GlobalRank     string
	UniqueVisitors string
	SiteTypeHint   string
	Rank           int
}

// FlaggedSite is one row of the flagged-illegal-sites feed.
type FlaggedSite struct {
	ID           int64
	Domain       string
	SiteTypeHint string
	StatusText   string
	SuccessorURL string
	Channel      string
	CreatedAt    time.Time
}

// SiteNote is a free-text observation keyed by domain.
type SiteNote struct {
	Domain    string
	Content   string
	NoteType  string
	CreatedAt time.Time
}

// Snapshot is one consistent read of the monitoring source. Report is
// nil when the source has published no report yet, in which case
// Results is empty.
type Snapshot struct {
	Report  *Report
	Results []AnalysisResult
	Flagged []FlaggedSite
	Notes   []SiteNote
}

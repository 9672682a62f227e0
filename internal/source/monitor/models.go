package monitor

import (
	"database/sql"
	"time"
)

// Row types for the monitoring source's schema. All reads are
// SELECT-only; this process never writes to these tables.

type reportRow struct {
	ID          int64     `db:"id"`
	Period      string    `db:"period_label"`
	Status      string    `db:"status"`
	DomainCount int       `db:"domain_count"`
	CreatedAt   time.Time `db:"created_at"`
}

type analysisResultRow struct {
	ID             int64          `db:"id"`
	ReportID       int64          `db:"report_id"`
	Domain         string         `db:"domain"`
	Recommendation sql.NullString `db:"recommendation"`
	TotalVisits    sql.NullInt64  `db:"total_visits"`
	GlobalRank     sql.NullInt64  `db:"global_rank"`
	UniqueVisitors sql.NullInt64  `db:"unique_visitors"`
	SiteTypeHint   sql.NullString `db:"site_type"`
	Rank           int            `db:"rank"`
}

type flaggedSiteRow struct {
	ID           int64          `db:"id"`
	Domain       string         `db:"domain"`
	SiteTypeHint sql.NullString `db:"site_type"`
	StatusText   sql.NullString `db:"site_status"`
	SuccessorURL sql.NullString `db:"successor_url"`
	Channel      sql.NullString `db:"channel"`
	CreatedAt    time.Time      `db:"created_at"`
}

type siteNoteRow struct {
	Domain    string    `db:"domain"`
	Content   string    `db:"content"`
	NoteType  string    `db:"note_type"`
	CreatedAt time.Time `db:"created_at"`
}

package domain

import "time"

// SiteType classifies what kind of piracy operation a site runs.
// The empty value means "not yet classified" and is never written
// over a known value by the sync engine.
type SiteType string

const (
	SiteTypeAggregator SiteType = "aggregator"
	SiteTypeScanlation SiteType = "scanlation"
	SiteTypeClone      SiteType = "clone"
	SiteTypeBlog       SiteType = "blog"
	SiteTypeOther      SiteType = "other"
	SiteTypeUnset      SiteType = ""
)

type SiteStatus string

const (
	StatusActive     SiteStatus = "active"
	StatusClosed     SiteStatus = "closed"
	StatusRedirected SiteStatus = "redirected"
	StatusUnknown    SiteStatus = "unknown"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// InvestigationStatus is owned by the investigator. The engine sets it
// to pending on auto-registration and never touches it again.
type InvestigationStatus string

const (
	InvestigationPending    InvestigationStatus = "pending"
	InvestigationInProgress InvestigationStatus = "in_progress"
	InvestigationCompleted  InvestigationStatus = "completed"
	InvestigationOnHold     InvestigationStatus = "on_hold"
)

// Site is the authoritative local record for a tracked domain.
// Domain is the unique natural key; the engine must never create a
// second row for a domain that already exists.
type Site struct {
	ID                  int64               `db:"id"`
	Domain              string              `db:"domain"`
	Name                string              `db:"name"`
	SiteType            SiteType            `db:"site_type"`
	Status              SiteStatus          `db:"status"`
	Priority            Priority            `db:"priority"`
	Recommendation      string              `db:"recommendation"`
	SourceRef           *int64              `db:"source_ref"`
	TrafficMonthly      string              `db:"traffic_monthly"`
	GlobalRank          string              `db:"global_rank"`
	UniqueVisitors      string              `db:"unique_visitors"`
	InvestigationStatus InvestigationStatus `db:"investigation_status"`
	Notes               string              `db:"notes"`
	CreatedAt           time.Time           `db:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at"`
	LastSyncedAt        *time.Time          `db:"last_synced_at"`
}

// SiteChanges is a field-level partial update. Nil fields are left
// untouched by the store; the engine only populates fields whose
// external value actually differs from the local one.
type SiteChanges struct {
	Name           *string
	SiteType       *SiteType
	Priority       *Priority
	Recommendation *string
	SourceRef      *int64
	TrafficMonthly *string
	GlobalRank     *string
	UniqueVisitors *string
	LastSyncedAt   *time.Time
}

// Empty reports whether the change set would touch nothing.
func (c *SiteChanges) Empty() bool {
	return c.Name == nil &&
		c.SiteType == nil &&
		c.Priority == nil &&
		c.Recommendation == nil &&
		c.SourceRef == nil &&
		c.TrafficMonthly == nil &&
		c.GlobalRank == nil &&
		c.UniqueVisitors == nil &&
		c.LastSyncedAt == nil
}

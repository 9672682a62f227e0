package domain

import "time"

type EventType string

const (
	EventSyncAdd              EventType = "sync_add"
	EventStatusChange         EventType = "status_change"
	EventDomainChange         EventType = "domain_change"
	EventRecommendationChange EventType = "recommendation_change"
)

type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceNormal   Importance = "normal"
	ImportanceLow      Importance = "low"
)

// DomainHistory is an append-only record of a domain's observed status
// or identity over time. The engine inserts, never updates or deletes.
type DomainHistory struct {
	ID         int64     `db:"id"`
	SiteID     int64     `db:"site_id"`
	Domain     string    `db:"domain"`
	Status     string    `db:"status"`
	DetectedAt time.Time `db:"detected_at"`
	Source     string    `db:"source"`
	Note       string    `db:"note"`
}

// TimelineEvent is an append-only audit entry surfaced in the
// investigator's UI. One event per transition the engine performs.
type TimelineEvent struct {
	ID          int64      `db:"id"`
	EntityType  string     `db:"entity_type"`
	EntityID    int64      `db:"entity_id"`
	EventType   EventType  `db:"event_type"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	OccurredAt  time.Time  `db:"occurred_at"`
	Source      string     `db:"source"`
	Importance  Importance `db:"importance"`
}

// OSINTRecord is an evidence note attached to a site. Pass C imports
// external notes as OSINT records, deduplicated by exact content.
type OSINTRecord struct {
	ID         int64     `db:"id"`
	SiteID     int64     `db:"site_id"`
	Content    string    `db:"content"`
	RecordType string    `db:"record_type"`
	Confidence float64   `db:"confidence"`
	Source     string    `db:"source"`
	CreatedAt  time.Time `db:"created_at"`
}

package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"piracy_tracker/internal/domain"
)

// HistoryStore holds the append-only domain_history table.
type HistoryStore struct {
	db *sqlx.DB
}

func NewHistoryStore(db *sqlx.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Insert(ctx context.Context, h *domain.DomainHistory) error {
	query := `
		INSERT INTO domain_history (site_id, domain, status, detected_at, source, note)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		h.SiteID, h.Domain, h.Status, h.DetectedAt, h.Source, h.Note)
	if err != nil {
		return err
	}
	h.ID, _ = res.LastInsertId()
	return nil
}

// DomainRecorded reports whether any history row already mentions the
// domain. Redirect detection uses this to avoid re-recording the same
// successor domain on every run.
func (s *HistoryStore) DomainRecorded(ctx context.Context, d string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM domain_history WHERE domain = ?", d)
	return count > 0, err
}

func (s *HistoryStore) ListBySite(ctx context.Context, siteID int64) ([]domain.DomainHistory, error) {
	var rows []domain.DomainHistory
	query := `
		SELECT id, site_id, domain, status, detected_at, source, note
		FROM domain_history
		WHERE site_id = ?
		ORDER BY detected_at, id`
	err := s.db.SelectContext(ctx, &rows, query, siteID)
	return rows, err
}

// TimelineStore holds the append-only timeline_events table.
type TimelineStore struct {
	db *sqlx.DB
}

func NewTimelineStore(db *sqlx.DB) *TimelineStore {
	return &TimelineStore{db: db}
}

func (s *TimelineStore) Insert(ctx context.Context, e *domain.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (
			entity_type, entity_id, event_type, title, description,
			occurred_at, source, importance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		e.EntityType, e.EntityID, e.EventType, e.Title, e.Description,
		e.OccurredAt, e.Source, e.Importance)
	if err != nil {
		return err
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

func (s *TimelineStore) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]domain.TimelineEvent, error) {
	var rows []domain.TimelineEvent
	query := `
		SELECT id, entity_type, entity_id, event_type, title, description,
		       occurred_at, source, importance
		FROM timeline_events
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY occurred_at, id`
	err := s.db.SelectContext(ctx, &rows, query, entityType, entityID)
	return rows, err
}

// OSINTStore holds imported evidence notes.
type OSINTStore struct {
	db *sqlx.DB
}

func NewOSINTStore(db *sqlx.DB) *OSINTStore {
	return &OSINTStore{db: db}
}

// ExistsWithContent is the Pass C dedup check: exact content match for
// the given site.
func (s *OSINTStore) ExistsWithContent(ctx context.Context, siteID int64, content string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM osint_records WHERE site_id = ? AND content = ?",
		siteID, content)
	return count > 0, err
}

func (s *OSINTStore) Insert(ctx context.Context, r *domain.OSINTRecord) error {
	query := `
		INSERT INTO osint_records (site_id, content, record_type, confidence, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		r.SiteID, r.Content, r.RecordType, r.Confidence, r.Source, r.CreatedAt)
	if err != nil {
		return err
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"piracy_tracker/internal/domain"
)

type SiteStore struct {
	db *sqlx.DB
}

func NewSiteStore(db *sqlx.DB) *SiteStore {
	return &SiteStore{db: db}
}

const siteColumns = `
	id, domain, name, site_type, status, priority, recommendation,
	source_ref, traffic_monthly, global_rank, unique_visitors,
	investigation_status, notes, created_at, updated_at, last_synced_at`

// GetAll returns the full site table. The engine loads it once per run
// to build its in-memory domain index.
func (s *SiteStore) GetAll(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	query := `SELECT ` + siteColumns + ` FROM sites ORDER BY id`
	err := s.db.SelectContext(ctx, &sites, query)
	return sites, err
}

func (s *SiteStore) GetByDomain(ctx context.Context, d string) (*domain.Site, error) {
	var site domain.Site
	query := `SELECT ` + siteColumns + ` FROM sites WHERE domain = ?`
	err := s.db.GetContext(ctx, &site, query, d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// Insert creates a site and returns its id. The unique index on domain
// rejects a second row for a domain that already exists.
func (s *SiteStore) Insert(ctx context.Context, site *domain.Site) (int64, error) {
	now := time.Now().UTC()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = now
	}
	site.UpdatedAt = now

	query := `
		INSERT INTO sites (
			domain, name, site_type, status, priority, recommendation,
			source_ref, traffic_monthly, global_rank, unique_visitors,
			investigation_status, notes, created_at, updated_at, last_synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		site.Domain,
		site.Name,
		site.SiteType,
		site.Status,
		site.Priority,
		site.Recommendation,
		site.SourceRef,
		site.TrafficMonthly,
		site.GlobalRank,
		site.UniqueVisitors,
		site.InvestigationStatus,
		site.Notes,
		site.CreatedAt,
		site.UpdatedAt,
		site.LastSyncedAt,
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	site.ID = id
	return id, nil
}

// Update applies a partial change set. Only non-nil fields make it
// into the SET clause; updated_at is always stamped.
func (s *SiteStore) Update(ctx context.Context, id int64, changes *domain.SiteChanges) error {
	var sb strings.Builder
	sb.WriteString("UPDATE sites SET updated_at = ?")
	args := []interface{}{time.Now().UTC()}

	set := func(column string, value interface{}) {
		sb.WriteString(", ")
		sb.WriteString(column)
		sb.WriteString(" = ?")
		args = append(args, value)
	}

	if changes.Name != nil {
		set("name", *changes.Name)
	}
	if changes.SiteType != nil {
		set("site_type", *changes.SiteType)
	}
	if changes.Priority != nil {
		set("priority", *changes.Priority)
	}
	if changes.Recommendation != nil {
		set("recommendation", *changes.Recommendation)
	}
	if changes.SourceRef != nil {
		set("source_ref", *changes.SourceRef)
	}
	if changes.TrafficMonthly != nil {
		set("traffic_monthly", *changes.TrafficMonthly)
	}
	if changes.GlobalRank != nil {
		set("global_rank", *changes.GlobalRank)
	}
	if changes.UniqueVisitors != nil {
		set("unique_visitors", *changes.UniqueVisitors)
	}
	if changes.LastSyncedAt != nil {
		set("last_synced_at", *changes.LastSyncedAt)
	}

	sb.WriteString(" WHERE id = ?")
	args = append(args, id)

	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// UpdateStatus writes a status transition plus the sync timestamp.
func (s *SiteStore) UpdateStatus(ctx context.Context, id int64, status domain.SiteStatus, syncedAt time.Time) error {
	query := `
		UPDATE sites
		SET status = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, status, syncedAt, time.Now().UTC(), id)
	return err
}

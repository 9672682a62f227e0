package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"piracy_tracker/internal/domain"
)

type SyncLogStore struct {
	db *sqlx.DB
}

func NewSyncLogStore(db *sqlx.DB) *SyncLogStore {
	return &SyncLogStore{db: db}
}

func (s *SyncLogStore) Insert(ctx context.Context, log *domain.SyncLog) error {
	query := `
		INSERT INTO sync_logs (id, status, sites_added, sites_updated, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		log.ID, log.Status, log.SitesAdded, log.SitesUpdated,
		log.Error, log.StartedAt, log.FinishedAt)
	return err
}

// Recent returns the latest n runs, newest first.
func (s *SyncLogStore) Recent(ctx context.Context, n int) ([]domain.SyncLog, error) {
	var logs []domain.SyncLog
	query := `
		SELECT id, status, sites_added, sites_updated, error, started_at, finished_at
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT ?`
	err := s.db.SelectContext(ctx, &logs, query, n)
	return logs, err
}

package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"piracy_tracker/internal/domain"
)

type FeedSource interface {
	Name() string
	FetchSnapshot(ctx context.Context) (*domain.Snapshot, error)
	SearchResults(ctx context.Context, query string) ([]domain.AnalysisResult, error)
}

type SiteStore interface {
	GetAll(ctx context.Context) ([]domain.Site, error)
	Insert(ctx context.Context, site *domain.Site) (int64, error)
	Update(ctx context.Context, id int64, changes *domain.SiteChanges) error
	UpdateStatus(ctx context.Context, id int64, status domain.SiteStatus, syncedAt time.Time) error
}

type HistoryStore interface {
	Insert(ctx context.Context, h *domain.DomainHistory) error
	DomainRecorded(ctx context.Context, d string) (bool, error)
}

type TimelineStore interface {
	Insert(ctx context.Context, e *domain.TimelineEvent) error
}

type OSINTStore interface {
	ExistsWithContent(ctx context.Context, siteID int64, content string) (bool, error)
	Insert(ctx context.Context, r *domain.OSINTRecord) error
}

type SyncLogStore interface {
	Insert(ctx context.Context, log *domain.SyncLog) error
	Recent(ctx context.Context, n int) ([]domain.SyncLog, error)
}

type Publisher interface {
	PublishSiteAdded(ctx context.Context, site *domain.Site) error
	PublishRunCompleted(ctx context.Context, result *domain.SyncResult) error
	Close() error
}

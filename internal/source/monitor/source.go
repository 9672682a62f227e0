// Package monitor reads the upstream piracy-monitoring database. It is
// strictly read-only: flagged sites, the latest periodic analysis
// report with its per-domain results, and free-text site notes.
package monitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"piracy_tracker/internal/domain"
)

const SourceName = "monitoring-feed"

// Source queries the monitoring database. The connection is owned by
// the caller and injected; pool sizing, SSL and per-query timeouts are
// configured there, not here.
type Source struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func New(db *sqlx.DB, logger *slog.Logger) *Source {
	return &Source{
		db:     db,
		logger: logger.With("source", SourceName),
	}
}

func (s *Source) Name() string {
	return SourceName
}

// FetchSnapshot reads all four datasets. Flagged sites, notes, and the
// report+results chain run concurrently; each query is an independent
// read-committed read, there is no cross-query transaction.
func (s *Source) FetchSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		flagged, err := s.fetchFlaggedSites(gctx)
		if err != nil {
			return fmt.Errorf("fetch flagged sites: %w", err)
		}
		snap.Flagged = flagged
		return nil
	})

	g.Go(func() error {
		report, err := s.fetchLatestReport(gctx)
		if err != nil {
			return fmt.Errorf("fetch latest report: %w", err)
		}
		if report == nil {
			return nil
		}
		snap.Report = report
		results, err := s.fetchReportResults(gctx, report.ID)
		if err != nil {
			return fmt.Errorf("fetch report results: %w", err)
		}
		snap.Results = results
		return nil
	})

	g.Go(func() error {
		notes, err := s.fetchSiteNotes(gctx)
		if err != nil {
			return fmt.Errorf("fetch site notes: %w", err)
		}
		snap.Notes = notes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("fetched snapshot",
		"flagged", len(snap.Flagged),
		"results", len(snap.Results),
		"notes", len(snap.Notes),
	)

	return snap, nil
}

func (s *Source) fetchLatestReport(ctx context.Context) (*domain.Report, error) {
	var row reportRow
	query := `
		SELECT id, period_label, status, domain_count, created_at
		FROM analysis_reports
		ORDER BY created_at DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.Report{
		ID:          row.ID,
		Period:      row.Period,
		Status:      row.Status,
		DomainCount: row.DomainCount,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func (s *Source) fetchReportResults(ctx context.Context, reportID int64) ([]domain.AnalysisResult, error) {
	var rows []analysisResultRow
	query := `
		SELECT id, report_id, domain, recommendation, total_visits,
		       global_rank, unique_visitors, site_type, rank
		FROM analysis_results
		WHERE report_id = $1
		ORDER BY rank`

	if err := s.db.SelectContext(ctx, &rows, query, reportID); err != nil {
		return nil, err
	}

	results := make([]domain.AnalysisResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, transformResult(r))
	}
	return results, nil
}

func (s *Source) fetchFlaggedSites(ctx context.Context) ([]domain.FlaggedSite, error) {
	var rows []flaggedSiteRow
	query := `
		SELECT id, domain, site_type, site_status, successor_url, channel, created_at
		FROM flagged_sites
		ORDER BY created_at`

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	flagged := make([]domain.FlaggedSite, 0, len(rows))
	for _, r := range rows {
		flagged = append(flagged, domain.FlaggedSite{
			ID:           r.ID,
			Domain:       r.Domain,
			SiteTypeHint: r.SiteTypeHint.String,
			StatusText:   r.StatusText.String,
			SuccessorURL: r.SuccessorURL.String,
			Channel:      r.Channel.String,
			CreatedAt:    r.CreatedAt,
		})
	}
	return flagged, nil
}

func (s *Source) fetchSiteNotes(ctx context.Context) ([]domain.SiteNote, error) {
	var rows []siteNoteRow
	query := `
		SELECT domain, content, note_type, created_at
		FROM site_notes
		ORDER BY created_at`

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	notes := make([]domain.SiteNote, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, domain.SiteNote{
			Domain:    r.Domain,
			Content:   r.Content,
			NoteType:  r.NoteType,
			CreatedAt: r.CreatedAt,
		})
	}
	return notes, nil
}

// SearchResults filters the latest report's rows by domain substring.
// Read-only; used for ad-hoc site addition from the UI.
func (s *Source) SearchResults(ctx context.Context, query string) ([]domain.AnalysisResult, error) {
	report, err := s.fetchLatestReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch latest report: %w", err)
	}
	if report == nil {
		return nil, nil
	}

	var rows []analysisResultRow
	q := `
		SELECT id, report_id, domain, recommendation, total_visits,
		       global_rank, unique_visitors, site_type, rank
		FROM analysis_results
		WHERE report_id = $1 AND domain ILIKE $2
		ORDER BY rank`

	if err := s.db.SelectContext(ctx, &rows, q, report.ID, "%"+query+"%"); err != nil {
		return nil, fmt.Errorf("search results: %w", err)
	}

	results := make([]domain.AnalysisResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, transformResult(r))
	}
	return results, nil
}

func transformResult(r analysisResultRow) domain.AnalysisResult {
	res := domain.AnalysisResult{
		ID:             r.ID,
		ReportID:       r.ReportID,
		Domain:         r.Domain,
		Recommendation: r.Recommendation.String,
		SiteTypeHint:   r.SiteTypeHint.String,
		Rank:           r.Rank,
	}
	if r.TotalVisits.Valid {
		res.TrafficMonthly = formatCount(r.TotalVisits.Int64)
	}
	if r.GlobalRank.Valid {
		res.GlobalRank = formatCount(r.GlobalRank.Int64)
	}
	if r.UniqueVisitors.Valid {
		res.UniqueVisitors = formatCount(r.UniqueVisitors.Int64)
	}
	return res
}

// formatCount renders 1200000 as "1,200,000". Traffic figures are
// stored and diffed as display strings.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

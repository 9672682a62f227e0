package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"piracy_tracker/internal/classify"
	"piracy_tracker/internal/domain"
)

// syncSource tags audit rows written by the engine, as opposed to
// rows entered by the investigator.
const syncSource = "monitoring-feed"

const noteConfidence = 0.5

// SyncService reconciles the external monitoring snapshot into the
// local investigation store. One Sync call is one run: three passes
// over the snapshot, then exactly one sync-log row. The caller must
// not start a second run before the first finishes; there is no lock
// in here.
type SyncService struct {
	source    FeedSource
	sites     SiteStore
	history   HistoryStore
	timeline  TimelineStore
	osint     OSINTStore
	syncLogs  SyncLogStore
	publisher Publisher
	logger    *slog.Logger
}

func NewSyncService(
	source FeedSource,
	sites SiteStore,
	history HistoryStore,
	timeline TimelineStore,
	osint OSINTStore,
	syncLogs SyncLogStore,
	publisher Publisher,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		source:    source,
		sites:     sites,
		history:   history,
		timeline:  timeline,
		osint:     osint,
		syncLogs:  syncLogs,
		publisher: publisher,
		logger:    logger.With("source", source.Name()),
	}
}

// Sync executes one reconciliation run. The result is never nil and
// its counts reflect whatever was committed before a failure; there is
// no rollback across passes. The returned error mirrors the last entry
// of result.Errors on failed runs.
func (s *SyncService) Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncResult, error) {
	start := time.Now()
	result := &domain.SyncResult{Timestamp: start}

	s.logger.Info("starting sync",
		"auto_add_top_targets", opts.AutoAddTopTargets,
		"auto_add_needed", opts.AutoAddNeeded,
		"sync_all_flagged", opts.SyncAllFlagged,
	)

	runErr := s.run(ctx, opts, result)

	result.Duration = time.Since(start)
	result.Success = runErr == nil

	logRow := &domain.SyncLog{
		ID:           uuid.NewString(),
		Status:       domain.SyncStatusSuccess,
		SitesAdded:   result.SitesAdded,
		SitesUpdated: result.SitesUpdated,
		StartedAt:    start,
		FinishedAt:   time.Now(),
	}
	if runErr != nil {
		result.Errors = append(result.Errors, runErr.Error())
		logRow.Status = domain.SyncStatusFailed
		logRow.Error = runErr.Error()
	}

	if err := s.syncLogs.Insert(ctx, logRow); err != nil {
		s.logger.Error("failed to write sync log", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("write sync log: %v", err))
		if runErr == nil {
			result.Success = false
			runErr = fmt.Errorf("write sync log: %w", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRunCompleted(ctx, result); err != nil {
			s.logger.Warn("failed to publish run summary", "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("publish run summary: %v", err))
		}
	}

	s.logger.Info("sync completed",
		"success", result.Success,
		"added", result.SitesAdded,
		"updated", result.SitesUpdated,
		"notes_imported", result.NotesImported,
		"domain_changes", result.DomainChangesDetected,
		"duration", result.Duration,
	)

	return result, runErr
}

func (s *SyncService) run(ctx context.Context, opts domain.SyncOptions, result *domain.SyncResult) error {
	snapshot, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	sites, err := s.sites.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load site index: %w", err)
	}

	// Index by domain, built once; all writes in a run go through it
	// sequentially so it stays valid without further synchronization.
	index := make(map[string]*domain.Site, len(sites))
	for i := range sites {
		index[sites[i].Domain] = &sites[i]
	}

	if err := s.reconcileResults(ctx, snapshot.Results, index, opts, result); err != nil {
		return err
	}
	if err := s.reconcileFlagged(ctx, snapshot.Flagged, index, opts, result); err != nil {
		return err
	}
	if err := s.importNotes(ctx, snapshot.Notes, index, result); err != nil {
		return err
	}

	return nil
}

// reconcileResults is Pass A: the latest report's per-domain rows are
// diffed field by field against known sites; unseen domains are
// auto-registered when the recommendation warrants it.
func (s *SyncService) reconcileResults(
	ctx context.Context,
	results []domain.AnalysisResult,
	index map[string]*domain.Site,
	opts domain.SyncOptions,
	result *domain.SyncResult,
) error {
	for i := range results {
		res := &results[i]

		site, ok := index[res.Domain]
		if !ok {
			if !classify.ShouldAutoRegister(res.Recommendation, opts) {
				continue
			}
			if err := s.registerSite(ctx, res, index, result); err != nil {
				return fmt.Errorf("register site %s: %w", res.Domain, err)
			}
			continue
		}

		if err := s.updateSite(ctx, site, res, result); err != nil {
			return fmt.Errorf("update site %s: %w", res.Domain, err)
		}
	}
	return nil
}

func (s *SyncService) registerSite(
	ctx context.Context,
	res *domain.AnalysisResult,
	index map[string]*domain.Site,
	result *domain.SyncResult,
) error {
	now := time.Now().UTC()
	sourceRef := res.ID

	site := &domain.Site{
		Domain:              res.Domain,
		Name:                res.Domain,
		SiteType:            classify.NormalizeSiteType(res.SiteTypeHint),
		Status:              domain.StatusActive,
		Priority:            classify.ClassifyPriority(res.Recommendation),
		Recommendation:      res.Recommendation,
		SourceRef:           &sourceRef,
		TrafficMonthly:      res.TrafficMonthly,
		GlobalRank:          res.GlobalRank,
		UniqueVisitors:      res.UniqueVisitors,
		InvestigationStatus: domain.InvestigationPending,
		Notes:               fmt.Sprintf("Auto-registered from %s: %s", syncSource, res.Recommendation),
		LastSyncedAt:        &now,
	}

	if _, err := s.sites.Insert(ctx, site); err != nil {
		return err
	}

	event := &domain.TimelineEvent{
		EntityType:  "site",
		EntityID:    site.ID,
		EventType:   domain.EventSyncAdd,
		Title:       fmt.Sprintf("Site auto-registered: %s", site.Domain),
		Description: fmt.Sprintf("Recommendation: %s", res.Recommendation),
		OccurredAt:  now,
		Source:      syncSource,
		Importance:  domain.ImportanceNormal,
	}
	if err := s.timeline.Insert(ctx, event); err != nil {
		return fmt.Errorf("record sync_add event: %w", err)
	}

	// Later passes in this run must see the new site.
	index[site.Domain] = site
	result.SitesAdded++

	s.logger.Info("auto-registered site",
		"domain", site.Domain,
		"priority", site.Priority,
	)

	if s.publisher != nil {
		if err := s.publisher.PublishSiteAdded(ctx, site); err != nil {
			s.logger.Warn("failed to publish site_added", "domain", site.Domain, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("publish site_added %s: %v", site.Domain, err))
		}
	}

	return nil
}

// updateSite diffs one analysis row against the local record. Only
// differing fields enter the change set; when nothing differs, no
// statement is issued at all.
func (s *SyncService) updateSite(
	ctx context.Context,
	site *domain.Site,
	res *domain.AnalysisResult,
	result *domain.SyncResult,
) error {
	changes := &domain.SiteChanges{}

	if res.TrafficMonthly != "" && res.TrafficMonthly != site.TrafficMonthly {
		changes.TrafficMonthly = &res.TrafficMonthly
	}
	if res.GlobalRank != "" && res.GlobalRank != site.GlobalRank {
		changes.GlobalRank = &res.GlobalRank
	}
	if res.UniqueVisitors != "" && res.UniqueVisitors != site.UniqueVisitors {
		changes.UniqueVisitors = &res.UniqueVisitors
	}
	if t := classify.NormalizeSiteType(res.SiteTypeHint); t != domain.SiteTypeUnset && t != site.SiteType {
		changes.SiteType = &t
	}

	recommendationChanged := res.Recommendation != "" && res.Recommendation != site.Recommendation
	if recommendationChanged {
		changes.Recommendation = &res.Recommendation
		priority := classify.ClassifyPriority(res.Recommendation)
		changes.Priority = &priority

		if site.Recommendation != "" {
			importance := domain.ImportanceNormal
			switch priority {
			case domain.PriorityCritical:
				importance = domain.ImportanceCritical
			case domain.PriorityHigh:
				importance = domain.ImportanceHigh
			}
			event := &domain.TimelineEvent{
				EntityType:  "site",
				EntityID:    site.ID,
				EventType:   domain.EventRecommendationChange,
				Title:       fmt.Sprintf("Recommendation change: %s", site.Domain),
				Description: fmt.Sprintf("%s → %s", site.Recommendation, res.Recommendation),
				OccurredAt:  time.Now().UTC(),
				Source:      syncSource,
				Importance:  importance,
			}
			if err := s.timeline.Insert(ctx, event); err != nil {
				return fmt.Errorf("record recommendation_change event: %w", err)
			}
		}
	}

	if changes.Empty() {
		return nil
	}

	now := time.Now().UTC()
	changes.LastSyncedAt = &now

	if err := s.sites.Update(ctx, site.ID, changes); err != nil {
		return err
	}

	applyChanges(site, changes)
	result.SitesUpdated++
	return nil
}

// applyChanges keeps the in-memory index consistent with what was
// just written.
func applyChanges(site *domain.Site, c *domain.SiteChanges) {
	if c.SiteType != nil {
		site.SiteType = *c.SiteType
	}
	if c.Priority != nil {
		site.Priority = *c.Priority
	}
	if c.Recommendation != nil {
		site.Recommendation = *c.Recommendation
	}
	if c.TrafficMonthly != nil {
		site.TrafficMonthly = *c.TrafficMonthly
	}
	if c.GlobalRank != nil {
		site.GlobalRank = *c.GlobalRank
	}
	if c.UniqueVisitors != nil {
		site.UniqueVisitors = *c.UniqueVisitors
	}
	if c.LastSyncedAt != nil {
		site.LastSyncedAt = c.LastSyncedAt
	}
}

// reconcileFlagged is Pass B: status transitions and redirect
// detection from the flagged-site feed.
func (s *SyncService) reconcileFlagged(
	ctx context.Context,
	flagged []domain.FlaggedSite,
	index map[string]*domain.Site,
	opts domain.SyncOptions,
	result *domain.SyncResult,
) error {
	for i := range flagged {
		f := &flagged[i]

		site, ok := index[f.Domain]
		if !ok {
			if !opts.SyncAllFlagged {
				continue
			}
			var err error
			site, err = s.registerFlaggedSite(ctx, f, index, result)
			if err != nil {
				return fmt.Errorf("register flagged site %s: %w", f.Domain, err)
			}
		}

		if err := s.detectStatusChange(ctx, site, f, result); err != nil {
			return fmt.Errorf("detect status change %s: %w", f.Domain, err)
		}
		if err := s.detectRedirect(ctx, site, f, index, result); err != nil {
			return fmt.Errorf("detect redirect %s: %w", f.Domain, err)
		}
	}
	return nil
}

func (s *SyncService) registerFlaggedSite(
	ctx context.Context,
	f *domain.FlaggedSite,
	index map[string]*domain.Site,
	result *domain.SyncResult,
) (*domain.Site, error) {
	now := time.Now().UTC()

	site := &domain.Site{
		Domain:              f.Domain,
		Name:                f.Domain,
		SiteType:            classify.NormalizeSiteType(f.SiteTypeHint),
		Status:              classify.NormalizeSiteStatus(f.StatusText),
		Priority:            domain.PriorityMedium,
		InvestigationStatus: domain.InvestigationPending,
		Notes:               fmt.Sprintf("Added from flagged-site feed (%s)", f.Channel),
		LastSyncedAt:        &now,
	}

	if _, err := s.sites.Insert(ctx, site); err != nil {
		return nil, err
	}

	event := &domain.TimelineEvent{
		EntityType: "site",
		EntityID:   site.ID,
		EventType:  domain.EventSyncAdd,
		Title:      fmt.Sprintf("Site added from flagged feed: %s", site.Domain),
		OccurredAt: now,
		Source:     syncSource,
		Importance: domain.ImportanceNormal,
	}
	if err := s.timeline.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("record sync_add event: %w", err)
	}

	index[site.Domain] = site
	result.SitesAdded++

	if s.publisher != nil {
		if err := s.publisher.PublishSiteAdded(ctx, site); err != nil {
			s.logger.Warn("failed to publish site_added", "domain", site.Domain, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("publish site_added %s: %v", site.Domain, err))
		}
	}

	return site, nil
}

// detectStatusChange applies the status state machine: an external
// status that resolves to unknown never overwrites a differing local
// status.
func (s *SyncService) detectStatusChange(
	ctx context.Context,
	site *domain.Site,
	f *domain.FlaggedSite,
	result *domain.SyncResult,
) error {
	status := classify.NormalizeSiteStatus(f.StatusText)
	if status == domain.StatusUnknown || status == site.Status {
		return nil
	}

	now := time.Now().UTC()
	transition := fmt.Sprintf("%s → %s", site.Status, status)

	history := &domain.DomainHistory{
		SiteID:     site.ID,
		Domain:     site.Domain,
		Status:     string(status),
		DetectedAt: now,
		Source:     syncSource,
		Note:       transition,
	}
	if err := s.history.Insert(ctx, history); err != nil {
		return fmt.Errorf("record domain history: %w", err)
	}

	event := &domain.TimelineEvent{
		EntityType:  "site",
		EntityID:    site.ID,
		EventType:   domain.EventStatusChange,
		Title:       fmt.Sprintf("Status change: %s", site.Domain),
		Description: transition,
		OccurredAt:  now,
		Source:      syncSource,
		Importance:  domain.ImportanceHigh,
	}
	if err := s.timeline.Insert(ctx, event); err != nil {
		return fmt.Errorf("record status_change event: %w", err)
	}

	if err := s.sites.UpdateStatus(ctx, site.ID, status, now); err != nil {
		return err
	}

	site.Status = status
	site.LastSyncedAt = &now
	result.DomainChangesDetected++

	s.logger.Info("status change detected", "domain", site.Domain, "transition", transition)
	return nil
}

// detectRedirect records a successor domain observed on a flagged
// site. It only records the observation; site creation for the new
// domain happens on a later run once the feed carries it.
func (s *SyncService) detectRedirect(
	ctx context.Context,
	site *domain.Site,
	f *domain.FlaggedSite,
	index map[string]*domain.Site,
	result *domain.SyncResult,
) error {
	if f.SuccessorURL == "" {
		return nil
	}

	successor := classify.NormalizeDomain(f.SuccessorURL)
	if successor == "" || successor == classify.NormalizeDomain(f.Domain) {
		return nil
	}

	if _, tracked := index[successor]; tracked {
		return nil
	}
	recorded, err := s.history.DomainRecorded(ctx, successor)
	if err != nil {
		return fmt.Errorf("check domain history: %w", err)
	}
	if recorded {
		return nil
	}

	now := time.Now().UTC()
	transition := fmt.Sprintf("%s → %s", site.Domain, successor)

	history := &domain.DomainHistory{
		SiteID:     site.ID,
		Domain:     successor,
		Status:     string(domain.StatusActive),
		DetectedAt: now,
		Source:     syncSource,
		Note:       transition,
	}
	if err := s.history.Insert(ctx, history); err != nil {
		return fmt.Errorf("record domain history: %w", err)
	}

	event := &domain.TimelineEvent{
		EntityType:  "site",
		EntityID:    site.ID,
		EventType:   domain.EventDomainChange,
		Title:       fmt.Sprintf("Domain redirect observed: %s", site.Domain),
		Description: transition,
		OccurredAt:  now,
		Source:      syncSource,
		Importance:  domain.ImportanceCritical,
	}
	if err := s.timeline.Insert(ctx, event); err != nil {
		return fmt.Errorf("record domain_change event: %w", err)
	}

	result.DomainChangesDetected++

	s.logger.Info("redirect detected", "domain", site.Domain, "successor", successor)
	return nil
}

// importNotes is Pass C: external notes become OSINT records,
// deduplicated by exact content per site.
func (s *SyncService) importNotes(
	ctx context.Context,
	notes []domain.SiteNote,
	index map[string]*domain.Site,
	result *domain.SyncResult,
) error {
	for i := range notes {
		note := &notes[i]

		site, ok := index[note.Domain]
		if !ok {
			continue
		}

		exists, err := s.osint.ExistsWithContent(ctx, site.ID, note.Content)
		if err != nil {
			return fmt.Errorf("check note dedup for %s: %w", note.Domain, err)
		}
		if exists {
			continue
		}

		record := &domain.OSINTRecord{
			SiteID:     site.ID,
			Content:    note.Content,
			RecordType: note.NoteType,
			Confidence: noteConfidence,
			Source:     "external feed",
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.osint.Insert(ctx, record); err != nil {
			return fmt.Errorf("import note for %s: %w", note.Domain, err)
		}
		result.NotesImported++
	}
	return nil
}

// RecentSyncLogs returns the latest n runs for display, newest first.
func (s *SyncService) RecentSyncLogs(ctx context.Context, n int) ([]domain.SyncLog, error) {
	if n <= 0 {
		n = 20
	}
	return s.syncLogs.Recent(ctx, n)
}

// SearchReport filters the latest report's results by domain
// substring. Read-only; no side effects on the local store.
func (s *SyncService) SearchReport(ctx context.Context, query string) ([]domain.AnalysisResult, error) {
	return s.source.SearchResults(ctx, query)
}

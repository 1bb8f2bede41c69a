package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwayleague/engine/internal/identity"
	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/internal/providers"
	"github.com/fairwayleague/engine/pkg/database"
)

// FeedSystem is the external system name player IDs are persisted under.
const FeedSystem = "scorefeed"

const syncWorkers = 8

// SyncResult is the structured outcome of one sync pass. Batch operations
// always report counts and problem samples instead of failing outright, so
// operators can triage partial failures without re-running anything.
type SyncResult struct {
	SyncRunID      uuid.UUID `json:"sync_run_id"`
	UpdatedCount   int       `json:"updated_count"`
	SkippedCount   int       `json:"skipped_count"`
	FailedCount    int       `json:"failed_count"`
	UnmatchedNames []string  `json:"unmatched_names"`
	AmbiguousNames []string  `json:"ambiguous_names"`
}

// ScoreSyncService reconciles external leaderboard snapshots into canonical
// per-player tournament state. It owns position, is_tied and total_score on
// TournamentPlayer; prize money is the prize service's pass, run after sync.
type ScoreSyncService struct {
	db     *database.DB
	cache  Cache
	logger *logrus.Logger
}

// NewScoreSyncService creates a new score sync service
func NewScoreSyncService(db *database.DB, cache Cache, logger *logrus.Logger) *ScoreSyncService {
	return &ScoreSyncService{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Sync applies one snapshot to a tournament's field. Writes are idempotent
// upserts keyed by TournamentPlayer ID; a record without a numeric position is
// skipped, and a per-record failure is logged and counted but never aborts the
// batch. A missing tournament is a whole-operation error since nothing can be
// written at all.
func (s *ScoreSyncService) Sync(ctx context.Context, tournamentID uuid.UUID, snapshot *providers.Snapshot) (*SyncResult, error) {
	var tournament models.Tournament
	if err := s.db.DB.WithContext(ctx).First(&tournament, "id = ?", tournamentID).Error; err != nil {
		return nil, fmt.Errorf("tournament %s not found: %w", tournamentID, err)
	}

	idx, entriesByID, err := s.buildIndex(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament field: %w", err)
	}

	startedAt := time.Now().UTC()
	result := &SyncResult{}

	// Resolve every record first, keeping the last record per tournament
	// player so concurrent writes never touch the same row. Problem names are
	// recorded once each, however often the feed repeats them.
	writes := make(map[uuid.UUID]providers.SnapshotRecord)
	unmatchedSeen := make(map[string]bool)
	ambiguousSeen := make(map[string]bool)
	for _, record := range snapshot.Records {
		match := idx.Resolve(record.Name, FeedSystem, record.ExternalID)
		switch match.Status {
		case identity.StatusUnmatched:
			if !unmatchedSeen[record.Name] {
				unmatchedSeen[record.Name] = true
				result.UnmatchedNames = append(result.UnmatchedNames, record.Name)
			}
		case identity.StatusAmbiguous:
			if !ambiguousSeen[record.Name] {
				ambiguousSeen[record.Name] = true
				result.AmbiguousNames = append(result.AmbiguousNames, record.Name)
			}
		case identity.StatusMatched:
			if record.PositionValue == nil {
				result.SkippedCount++
				continue
			}
			writes[match.TournamentPlayerID] = record
			if record.ExternalID != "" {
				s.backfillExternalID(ctx, entriesByID[match.TournamentPlayerID], record.ExternalID)
			}
		}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, syncWorkers)
	)
	for tpID, record := range writes {
		wg.Add(1)
		sem <- struct{}{}
		go func(tpID uuid.UUID, record providers.SnapshotRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.writeRecord(ctx, tpID, record)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Errorf("Failed to write score for %q (tournament player %s): %v", record.Name, tpID, err)
				result.FailedCount++
				return
			}
			result.UpdatedCount++
		}(tpID, record)
	}
	wg.Wait()

	sort.Strings(result.UnmatchedNames)
	sort.Strings(result.AmbiguousNames)

	completedAt := time.Now().UTC()
	run := models.SyncRun{
		ID:             uuid.New(),
		TournamentID:   tournamentID,
		StartedAt:      startedAt,
		CompletedAt:    &completedAt,
		UpdatedCount:   result.UpdatedCount,
		SkippedCount:   result.SkippedCount,
		FailedCount:    result.FailedCount,
		UnmatchedNames: models.StringArray(result.UnmatchedNames),
		AmbiguousNames: models.StringArray(result.AmbiguousNames),
	}
	if err := s.db.DB.WithContext(ctx).Create(&run).Error; err != nil {
		s.logger.Errorf("Failed to persist sync run for tournament %s: %v", tournamentID, err)
	} else {
		result.SyncRunID = run.ID
	}

	if s.cache != nil {
		if err := s.cache.SetSimple(SyncStatusCacheKey(tournamentID), result, time.Hour); err != nil {
			s.logger.Warnf("Failed to cache sync status: %v", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tournament_id": tournamentID,
		"updated":       result.UpdatedCount,
		"skipped":       result.SkippedCount,
		"failed":        result.FailedCount,
		"unmatched":     len(result.UnmatchedNames),
		"ambiguous":     len(result.AmbiguousNames),
	}).Info("Score sync completed")

	return result, nil
}

// Status returns the outcome of the most recent sync pass, serving the cached
// copy when one exists and rebuilding it from the audit row otherwise.
func (s *ScoreSyncService) Status(ctx context.Context, tournamentID uuid.UUID) (*SyncResult, error) {
	if s.cache != nil {
		var cached SyncResult
		if err := s.cache.GetSimple(SyncStatusCacheKey(tournamentID), &cached); err == nil && cached.SyncRunID != uuid.Nil {
			return &cached, nil
		}
	}

	run, err := s.LastRun(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return &SyncResult{
		SyncRunID:      run.ID,
		UpdatedCount:   run.UpdatedCount,
		SkippedCount:   run.SkippedCount,
		FailedCount:    run.FailedCount,
		UnmatchedNames: []string(run.UnmatchedNames),
		AmbiguousNames: []string(run.AmbiguousNames),
	}, nil
}

// LastRun returns the most recent sync run for a tournament.
func (s *ScoreSyncService) LastRun(ctx context.Context, tournamentID uuid.UUID) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.DB.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// buildIndex loads the tournament field and registers every entrant in an
// identity index. The index is a per-batch cache, discarded after the pass.
func (s *ScoreSyncService) buildIndex(ctx context.Context, tournamentID uuid.UUID) (*identity.Index, map[uuid.UUID]*models.TournamentPlayer, error) {
	var field []models.TournamentPlayer
	err := s.db.DB.WithContext(ctx).
		Preload("Player").
		Where("tournament_id = ?", tournamentID).
		Find(&field).Error
	if err != nil {
		return nil, nil, err
	}

	entries := make([]identity.Entry, 0, len(field))
	byID := make(map[uuid.UUID]*models.TournamentPlayer, len(field))
	for i := range field {
		tp := &field[i]
		if tp.Player == nil {
			continue
		}
		externalIDs := make(map[string]string)
		for system, v := range tp.Player.ExternalIDs {
			if id, ok := v.(string); ok && id != "" {
				externalIDs[system] = id
			}
		}
		entries = append(entries, identity.Entry{
			PlayerID:           tp.PlayerID,
			TournamentPlayerID: tp.ID,
			DisplayName:        tp.Player.DisplayName,
			ExternalIDs:        externalIDs,
		})
		byID[tp.ID] = tp
	}
	return identity.NewIndex(entries), byID, nil
}

func (s *ScoreSyncService) writeRecord(ctx context.Context, tpID uuid.UUID, record providers.SnapshotRecord) error {
	updates := map[string]interface{}{
		"position":    record.PositionValue,
		"is_tied":     strings.HasPrefix(strings.ToUpper(strings.TrimSpace(record.PositionLabel)), "T"),
		"total_score": ParseTotalScore(record.TotalScoreLabel),
		"updated_at":  time.Now().UTC(),
	}
	return s.db.DB.WithContext(ctx).
		Model(&models.TournamentPlayer{}).
		Where("id = ?", tpID).
		Updates(updates).Error
}

// backfillExternalID persists a newly seen feed ID on the matched player so
// future syncs take the fast path. Best effort, a failure only costs speed.
func (s *ScoreSyncService) backfillExternalID(ctx context.Context, tp *models.TournamentPlayer, externalID string) {
	if tp == nil || tp.Player == nil {
		return
	}
	if existing, ok := tp.Player.ExternalID(FeedSystem); ok && existing == externalID {
		return
	}
	tp.Player.SetExternalID(FeedSystem, externalID)
	err := s.db.DB.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", tp.PlayerID).
		Update("external_ids", tp.Player.ExternalIDs).Error
	if err != nil {
		s.logger.Warnf("Failed to backfill external ID for player %s: %v", tp.PlayerID, err)
	}
}

// ParseTotalScore parses a leaderboard score label relative to par: "E" is
// even, "+N" over, "-N" under. Unparsable labels yield nil rather than a
// guess.
func ParseTotalScore(label string) *int {
	s := strings.TrimSpace(strings.ToUpper(label))
	if s == "" {
		return nil
	}
	if s == "E" {
		zero := 0
		return &zero
	}
	value, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return nil
	}
	return &value
}

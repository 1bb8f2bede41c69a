package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/pkg/database"
)

// StandingsRow is one roster's placement within a league for a tournament.
type StandingsRow struct {
	Rank               int       `json:"rank"`
	UserID             string    `json:"user_id"`
	RosterID           uuid.UUID `json:"roster_id"`
	TotalWinningsCents int64     `json:"total_winnings_cents"`
}

// StandingsService ranks league member rosters by winnings. Reads only; the
// totals it sorts are owned by the prize service.
type StandingsService struct {
	db     *database.DB
	cache  Cache
	logger *logrus.Logger
}

// NewStandingsService creates a new standings service
func NewStandingsService(db *database.DB, cache Cache, logger *logrus.Logger) *StandingsService {
	return &StandingsService{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// TournamentCounts reports whether a tournament counts toward a league's
// standings. Absence of an exclusion row means it counts.
func (s *StandingsService) TournamentCounts(ctx context.Context, leagueID, tournamentID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.DB.WithContext(ctx).
		Model(&models.LeagueTournamentExclusion{}).
		Where("league_id = ? AND tournament_id = ?", leagueID, tournamentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Standings returns a league's member rosters for a tournament ranked by
// total winnings, highest first. An excluded tournament yields an error so
// callers cannot present standings that do not count. Results are served from
// the cache until it expires or a prize pass invalidates it.
func (s *StandingsService) Standings(ctx context.Context, leagueID, tournamentID uuid.UUID) ([]StandingsRow, error) {
	counts, err := s.TournamentCounts(ctx, leagueID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check tournament exclusion: %w", err)
	}
	if !counts {
		return nil, fmt.Errorf("tournament %s is excluded from league %s standings", tournamentID, leagueID)
	}

	if s.cache != nil {
		var cached []StandingsRow
		if err := s.cache.GetSimple(StandingsCacheKey(leagueID, tournamentID), &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	rosters, err := s.memberRosters(ctx, leagueID, tournamentID)
	if err != nil {
		return nil, err
	}

	rows := RankRosters(rosters)

	if s.cache != nil && len(rows) > 0 {
		if err := s.cache.SetSimple(StandingsCacheKey(leagueID, tournamentID), rows, 10*time.Minute); err != nil {
			s.logger.Warnf("Failed to cache standings for league %s: %v", leagueID, err)
		}
	}
	return rows, nil
}

// InvalidateTournament drops the cached standings of every league touched by a
// tournament. The prize pass calls this after rewriting winnings so readers
// never see stale ranks for the cache TTL.
func (s *StandingsService) InvalidateTournament(ctx context.Context, tournamentID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}

	rosterUsers := s.db.DB.Model(&models.UserRoster{}).
		Select("user_id").
		Where("tournament_id = ?", tournamentID)

	var leagueIDs []uuid.UUID
	err := s.db.DB.WithContext(ctx).
		Model(&models.LeagueMembership{}).
		Distinct().
		Where("user_id IN (?)", rosterUsers).
		Pluck("league_id", &leagueIDs).Error
	if err != nil {
		return fmt.Errorf("failed to find leagues for tournament %s: %w", tournamentID, err)
	}
	if len(leagueIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(leagueIDs))
	for _, leagueID := range leagueIDs {
		keys = append(keys, StandingsCacheKey(leagueID, tournamentID))
	}
	return s.cache.Delete(ctx, keys...)
}

// memberRosters loads the tournament rosters of every league member.
func (s *StandingsService) memberRosters(ctx context.Context, leagueID, tournamentID uuid.UUID) ([]models.UserRoster, error) {
	var memberships []models.LeagueMembership
	err := s.db.DB.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load league members: %w", err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	userIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}

	var rosters []models.UserRoster
	err = s.db.DB.WithContext(ctx).
		Where("tournament_id = ? AND user_id IN ?", tournamentID, userIDs).
		Find(&rosters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load member rosters: %w", err)
	}
	return rosters, nil
}

// RankRosters sorts rosters by winnings descending and assigns 1-based ranks.
// Equal totals keep a stable user-ID order so repeated computations agree.
func RankRosters(rosters []models.UserRoster) []StandingsRow {
	sorted := make([]models.UserRoster, len(rosters))
	copy(sorted, rosters)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalWinningsCents != sorted[j].TotalWinningsCents {
			return sorted[i].TotalWinningsCents > sorted[j].TotalWinningsCents
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	rows := make([]StandingsRow, len(sorted))
	for i, roster := range sorted {
		rows[i] = StandingsRow{
			Rank:               i + 1,
			UserID:             roster.UserID,
			RosterID:           roster.ID,
			TotalWinningsCents: roster.TotalWinningsCents,
		}
	}
	return rows
}

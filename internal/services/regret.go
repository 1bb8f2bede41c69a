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

// RegretService detects rosters whose owner edited away a better lineup: a
// prior roster version that would have finished at a strictly better league
// rank than the current picks did. The scan reads rosters, versions and league
// membership and writes only notification records.
type RegretService struct {
	db       *database.DB
	notifier Notifier
	logger   *logrus.Logger
}

// NewRegretService creates a new regret service
func NewRegretService(db *database.DB, notifier Notifier, logger *logrus.Logger) *RegretService {
	return &RegretService{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// regretCandidate is a roster whose best historical version out-earned the
// current picks. Rank comparison happens later, per league.
type regretCandidate struct {
	roster        models.UserRoster
	bestVersionID uuid.UUID
	currentTotal  int64
	wouldBeTotal  int64
}

// Scan runs the counterfactual pass for one tournament and returns the
// notifications it recorded. One notification is emitted per user, for the
// first qualifying league in league-ID order. A roster failure is logged and
// skipped, never fatal to the scan.
func (s *RegretService) Scan(ctx context.Context, tournamentID uuid.UUID) ([]models.RegretNotification, error) {
	var rosters []models.UserRoster
	err := s.db.DB.WithContext(ctx).
		Preload("Players.TournamentPlayer").
		Preload("Versions.Players.TournamentPlayer").
		Where("tournament_id = ?", tournamentID).
		Find(&rosters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rosters: %w", err)
	}

	var candidates []regretCandidate
	for _, roster := range rosters {
		if len(roster.Versions) == 0 {
			continue
		}
		candidate, ok := evaluateRoster(roster)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var notifications []models.RegretNotification
	for _, candidate := range candidates {
		notification, err := s.rankAcrossLeagues(ctx, tournamentID, candidate, rosters)
		if err != nil {
			s.logger.Errorf("Regret ranking failed for roster %s: %v", candidate.roster.ID, err)
			continue
		}
		if notification == nil {
			continue
		}
		if err := s.db.DB.WithContext(ctx).Create(notification).Error; err != nil {
			s.logger.Errorf("Failed to record regret notification for user %s: %v", candidate.roster.UserID, err)
			continue
		}
		s.dispatch(ctx, notification)
		notifications = append(notifications, *notification)
	}
	return notifications, nil
}

// evaluateRoster sums the live picks against every historical version and
// keeps the best version. No regret when nothing out-earns the current picks.
func evaluateRoster(roster models.UserRoster) (regretCandidate, bool) {
	var currentTotal int64
	for _, pick := range roster.Players {
		if pick.TournamentPlayer != nil {
			currentTotal += pick.TournamentPlayer.PrizeMoneyCents
		}
	}

	var (
		bestTotal   int64
		bestVersion uuid.UUID
	)
	for _, version := range roster.Versions {
		var total int64
		for _, pick := range version.Players {
			if pick.TournamentPlayer != nil {
				total += pick.TournamentPlayer.PrizeMoneyCents
			}
		}
		if total > bestTotal || bestVersion == uuid.Nil {
			bestTotal = total
			bestVersion = version.ID
		}
	}

	if bestTotal <= currentTotal {
		return regretCandidate{}, false
	}
	return regretCandidate{
		roster:        roster,
		bestVersionID: bestVersion,
		currentTotal:  currentTotal,
		wouldBeTotal:  bestTotal,
	}, true
}

// rankAcrossLeagues walks the user's leagues in league-ID order and returns a
// notification for the first league where the tournament counts and the best
// historical version would have placed strictly higher. Equal rank is not
// notable.
func (s *RegretService) rankAcrossLeagues(ctx context.Context, tournamentID uuid.UUID, candidate regretCandidate, allRosters []models.UserRoster) (*models.RegretNotification, error) {
	var memberships []models.LeagueMembership
	err := s.db.DB.WithContext(ctx).
		Where("user_id = ?", candidate.roster.UserID).
		Order("league_id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load league memberships: %w", err)
	}

	for _, membership := range memberships {
		var excluded int64
		err := s.db.DB.WithContext(ctx).
			Model(&models.LeagueTournamentExclusion{}).
			Where("league_id = ? AND tournament_id = ?", membership.LeagueID, tournamentID).
			Count(&excluded).Error
		if err != nil {
			return nil, err
		}
		if excluded > 0 {
			continue
		}

		members, err := s.leagueMemberRosters(ctx, membership.LeagueID, allRosters)
		if err != nil {
			return nil, err
		}

		currentRank, found := rankOf(RankRosters(members), candidate.roster.ID)
		if !found {
			continue
		}

		hypothetical := make([]models.UserRoster, len(members))
		copy(hypothetical, members)
		for i := range hypothetical {
			if hypothetical[i].ID == candidate.roster.ID {
				hypothetical[i].TotalWinningsCents = candidate.wouldBeTotal
			}
		}
		wouldBeRank, _ := rankOf(RankRosters(hypothetical), candidate.roster.ID)

		if wouldBeRank >= currentRank {
			continue
		}

		return &models.RegretNotification{
			ID:                uuid.New(),
			UserID:            candidate.roster.UserID,
			LeagueID:          membership.LeagueID,
			TournamentID:      tournamentID,
			RosterID:          candidate.roster.ID,
			RosterVersionID:   candidate.bestVersionID,
			CurrentTotalCents: candidate.currentTotal,
			WouldBeTotalCents: candidate.wouldBeTotal,
			CurrentRank:       currentRank,
			WouldBeRank:       wouldBeRank,
		}, nil
	}
	return nil, nil
}

// leagueMemberRosters filters the already-loaded tournament rosters down to a
// league's members, sorted by user ID for determinism.
func (s *RegretService) leagueMemberRosters(ctx context.Context, leagueID uuid.UUID, allRosters []models.UserRoster) ([]models.UserRoster, error) {
	var memberships []models.LeagueMembership
	err := s.db.DB.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load members of league %s: %w", leagueID, err)
	}

	memberSet := make(map[string]bool, len(memberships))
	for _, m := range memberships {
		memberSet[m.UserID] = true
	}

	var members []models.UserRoster
	for _, roster := range allRosters {
		if memberSet[roster.UserID] {
			members = append(members, roster)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

// dispatch hands the notification to the outbound channel. Fire and forget:
// a delivery failure is logged per recipient and the record stays unsent.
func (s *RegretService) dispatch(ctx context.Context, notification *models.RegretNotification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendRegret(ctx, notification); err != nil {
		s.logger.Errorf("Failed to notify user %s: %v", notification.UserID, err)
		return
	}
	now := time.Now().UTC()
	err := s.db.DB.WithContext(ctx).
		Model(&models.RegretNotification{}).
		Where("id = ?", notification.ID).
		Update("sent_at", now).Error
	if err != nil {
		s.logger.Warnf("Failed to mark notification %s sent: %v", notification.ID, err)
	} else {
		notification.SentAt = &now
	}
}

func rankOf(rows []StandingsRow, rosterID uuid.UUID) (int, bool) {
	for _, row := range rows {
		if row.RosterID == rosterID {
			return row.Rank, true
		}
	}
	return 0, false
}

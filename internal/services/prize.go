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

// PayoutTable is one tournament's position to payout mapping, loaded once per
// pass. All amounts are integer cents; no floating point touches money.
type PayoutTable map[int]models.PrizeDistribution

// ComputePayout returns the per-player amount in cents for a finishing
// position with tieCount players sharing it. Official pre-computed tie splits
// win over arithmetic since real tour payouts round non-uniformly; without one
// the summed amounts for the tied range split evenly, remainder cents left on
// the table. A position with no row pays nothing and reports false.
func (t PayoutTable) ComputePayout(position, tieCount int) (int64, bool) {
	row, ok := t[position]
	if !ok {
		return 0, false
	}
	if tieCount <= 1 {
		return row.AmountCents, true
	}
	if amount, ok := row.TiedAmountCents(tieCount); ok {
		return amount, true
	}

	var sum int64
	for p := position; p < position+tieCount; p++ {
		if r, ok := t[p]; ok {
			sum += r.AmountCents
		}
	}
	return sum / int64(tieCount), true
}

// PayoutResult is the structured outcome of one prize pass.
type PayoutResult struct {
	PlayersPaid      int   `json:"players_paid"`
	MissingPositions []int `json:"missing_positions"`
	FailedCount      int   `json:"failed_count"`
	RostersUpdated   int   `json:"rosters_updated"`
}

// PrizeService computes prize money from synced positions and rolls the
// amounts up into roster totals. It owns prize_money_cents on TournamentPlayer
// and total_winnings_cents on UserRoster.
type PrizeService struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewPrizeService creates a new prize service
func NewPrizeService(db *database.DB, logger *logrus.Logger) *PrizeService {
	return &PrizeService{
		db:     db,
		logger: logger,
	}
}

// LoadTable fetches a tournament's payout table. An empty table is a
// configuration error: no payout can be computed at all, so the whole
// operation fails rather than silently paying zero.
func (s *PrizeService) LoadTable(ctx context.Context, tournamentID uuid.UUID) (PayoutTable, error) {
	var rows []models.PrizeDistribution
	err := s.db.DB.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load prize table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no prize distribution configured for tournament %s", tournamentID)
	}
	table := make(PayoutTable, len(rows))
	for _, row := range rows {
		table[row.Position] = row
	}
	return table, nil
}

// ApplyPayouts walks a tournament's ranked players, groups them into tie runs
// by shared position, writes each player's payout and then recomputes every
// roster's total winnings. Per-player write failures are counted and skipped;
// a missing payout row is recorded per position and pays zero.
func (s *PrizeService) ApplyPayouts(ctx context.Context, tournamentID uuid.UUID) (*PayoutResult, error) {
	table, err := s.LoadTable(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var ranked []models.TournamentPlayer
	err = s.db.DB.WithContext(ctx).
		Where("tournament_id = ? AND position IS NOT NULL", tournamentID).
		Order("position ASC").
		Find(&ranked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ranked players: %w", err)
	}

	result := &PayoutResult{}
	missing := map[int]bool{}

	for i := 0; i < len(ranked); {
		position := *ranked[i].Position
		j := i
		for j < len(ranked) && *ranked[j].Position == position {
			j++
		}
		tieCount := j - i

		amount, ok := table.ComputePayout(position, tieCount)
		if !ok && !missing[position] {
			missing[position] = true
			result.MissingPositions = append(result.MissingPositions, position)
		}

		for k := i; k < j; k++ {
			err := s.db.DB.WithContext(ctx).
				Model(&models.TournamentPlayer{}).
				Where("id = ?", ranked[k].ID).
				Updates(map[string]interface{}{
					"prize_money_cents": amount,
					"updated_at":        time.Now().UTC(),
				}).Error
			if err != nil {
				s.logger.Errorf("Failed to write payout for tournament player %s: %v", ranked[k].ID, err)
				result.FailedCount++
				continue
			}
			result.PlayersPaid++
		}
		i = j
	}
	sort.Ints(result.MissingPositions)

	updated, err := s.rollUpRosters(ctx, tournamentID)
	if err != nil {
		return result, fmt.Errorf("failed to roll up roster totals: %w", err)
	}
	result.RostersUpdated = updated

	s.logger.WithFields(logrus.Fields{
		"tournament_id":     tournamentID,
		"players_paid":      result.PlayersPaid,
		"failed":            result.FailedCount,
		"missing_positions": len(result.MissingPositions),
		"rosters_updated":   result.RostersUpdated,
	}).Info("Prize payouts applied")

	return result, nil
}

// rollUpRosters recomputes total_winnings_cents for every roster in the
// tournament from its current picks.
func (s *PrizeService) rollUpRosters(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	var rosters []models.UserRoster
	err := s.db.DB.WithContext(ctx).
		Preload("Players.TournamentPlayer").
		Where("tournament_id = ?", tournamentID).
		Find(&rosters).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, roster := range rosters {
		var total int64
		for _, pick := range roster.Players {
			if pick.TournamentPlayer != nil {
				total += pick.TournamentPlayer.PrizeMoneyCents
			}
		}
		err := s.db.DB.WithContext(ctx).
			Model(&models.UserRoster{}).
			Where("id = ?", roster.ID).
			Update("total_winnings_cents", total).Error
		if err != nil {
			s.logger.Errorf("Failed to update winnings for roster %s: %v", roster.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

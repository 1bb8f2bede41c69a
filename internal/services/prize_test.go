package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/engine/internal/models"
)

func payoutTable(rows ...models.PrizeDistribution) PayoutTable {
	table := make(PayoutTable, len(rows))
	for _, row := range rows {
		table[row.Position] = row
	}
	return table
}

func TestComputePayoutNoTie(t *testing.T) {
	table := payoutTable(
		models.PrizeDistribution{Position: 1, AmountCents: 30000000},
		models.PrizeDistribution{Position: 2, AmountCents: 18000000},
	)
	amount, ok := table.ComputePayout(1, 1)
	require.True(t, ok)
	assert.Equal(t, int64(30000000), amount)
}

func TestComputePayoutPreComputedTieWins(t *testing.T) {
	// Official split differs from the arithmetic one, the table value wins.
	table := payoutTable(
		models.PrizeDistribution{
			Position:         4,
			AmountCents:      5000000,
			TiedAmountsCents: models.Int64Array{4500000, 4000000},
		},
		models.PrizeDistribution{Position: 5, AmountCents: 4200000},
	)
	amount, ok := table.ComputePayout(4, 2)
	require.True(t, ok)
	assert.Equal(t, int64(4500000), amount, "tied_amounts wins over (5000000+4200000)/2")

	amount, ok = table.ComputePayout(4, 3)
	require.True(t, ok)
	assert.Equal(t, int64(4000000), amount)
}

func TestComputePayoutEvenSplitFallback(t *testing.T) {
	// An 11-way tie has no pre-computed entry; the summed range splits evenly.
	rows := make([]models.PrizeDistribution, 0, 15)
	var rangeSum int64
	for position := 50; position <= 64; position++ {
		amount := int64(100000 - position*37) // uneven amounts, non-divisible sum
		rows = append(rows, models.PrizeDistribution{Position: position, AmountCents: amount})
		if position >= 50 && position < 50+11 {
			rangeSum += amount
		}
	}
	table := payoutTable(rows...)

	amount, ok := table.ComputePayout(50, 11)
	require.True(t, ok)
	assert.Equal(t, rangeSum/11, amount)
	assert.LessOrEqual(t, rangeSum-amount*11, int64(10), "residue stays within rounding tolerance")
}

func TestComputePayoutRangePastTableEnd(t *testing.T) {
	table := payoutTable(
		models.PrizeDistribution{Position: 64, AmountCents: 300000},
		models.PrizeDistribution{Position: 65, AmountCents: 200000},
	)
	// Three-way tie at 64 runs past the last paid position.
	amount, ok := table.ComputePayout(64, 3)
	require.True(t, ok)
	assert.Equal(t, int64(500000/3), amount)
}

func TestComputePayoutMissingPosition(t *testing.T) {
	table := payoutTable(models.PrizeDistribution{Position: 1, AmountCents: 100})
	_, ok := table.ComputePayout(99, 1)
	assert.False(t, ok)
}

func TestLoadTableMissingIsConfigError(t *testing.T) {
	db := newTestDB(t)
	service := NewPrizeService(db, quietLogger())

	tournament := createTournament(t, db, "No Purse Open")
	_, err := service.LoadTable(context.Background(), tournament.ID)
	assert.Error(t, err)
}

func TestApplyPayouts(t *testing.T) {
	db := newTestDB(t)
	service := NewPrizeService(db, quietLogger())

	tournament := createTournament(t, db, "Payout Championship")
	rows := []models.PrizeDistribution{
		{ID: uuid.New(), TournamentID: tournament.ID, Position: 1, AmountCents: 30000000},
		{ID: uuid.New(), TournamentID: tournament.ID, Position: 2, AmountCents: 18000000},
		{ID: uuid.New(), TournamentID: tournament.ID, Position: 3, AmountCents: 11000000},
		{ID: uuid.New(), TournamentID: tournament.ID, Position: 4, AmountCents: 5000000,
			TiedAmountsCents: models.Int64Array{4500000}},
		{ID: uuid.New(), TournamentID: tournament.ID, Position: 5, AmountCents: 4000000},
	}
	require.NoError(t, db.DB.Create(&rows).Error)

	winner := createEntrant(t, db, tournament.ID, "Jon Rahm")
	tiedA := createEntrant(t, db, tournament.ID, "Matthias Schmid")
	tiedB := createEntrant(t, db, tournament.ID, "Ludvig Åberg")
	unranked := createEntrant(t, db, tournament.ID, "Cut Guy")

	setPosition := func(tp models.TournamentPlayer, position int, tied bool) {
		require.NoError(t, db.DB.Model(&models.TournamentPlayer{}).
			Where("id = ?", tp.ID).
			Updates(map[string]interface{}{"position": position, "is_tied": tied}).Error)
	}
	setPosition(winner, 1, false)
	setPosition(tiedA, 4, true)
	setPosition(tiedB, 4, true)

	roster := models.UserRoster{ID: uuid.New(), UserID: "user-1", TournamentID: tournament.ID}
	require.NoError(t, db.DB.Create(&roster).Error)
	picks := []models.RosterPlayer{
		{ID: uuid.New(), RosterID: roster.ID, TournamentPlayerID: winner.ID},
		{ID: uuid.New(), RosterID: roster.ID, TournamentPlayerID: tiedA.ID},
	}
	require.NoError(t, db.DB.Create(&picks).Error)

	result, err := service.ApplyPayouts(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.PlayersPaid)
	assert.Equal(t, 0, result.FailedCount)
	assert.Empty(t, result.MissingPositions)
	assert.Equal(t, 1, result.RostersUpdated)

	assertPrize := func(tp models.TournamentPlayer, expected int64) {
		var got models.TournamentPlayer
		require.NoError(t, db.DB.First(&got, "id = ?", tp.ID).Error)
		assert.Equal(t, expected, got.PrizeMoneyCents)
	}
	assertPrize(winner, 30000000)
	assertPrize(tiedA, 4500000)
	assertPrize(tiedB, 4500000)
	assertPrize(unranked, 0)

	var gotRoster models.UserRoster
	require.NoError(t, db.DB.First(&gotRoster, "id = ?", roster.ID).Error)
	assert.Equal(t, int64(30000000+4500000), gotRoster.TotalWinningsCents)
}

func TestApplyPayoutsReportsMissingPositions(t *testing.T) {
	db := newTestDB(t)
	service := NewPrizeService(db, quietLogger())

	tournament := createTournament(t, db, "Short Table Open")
	row := models.PrizeDistribution{ID: uuid.New(), TournamentID: tournament.ID, Position: 1, AmountCents: 100000}
	require.NoError(t, db.DB.Create(&row).Error)

	entrant := createEntrant(t, db, tournament.ID, "Jon Rahm")
	require.NoError(t, db.DB.Model(&models.TournamentPlayer{}).
		Where("id = ?", entrant.ID).
		Update("position", 7).Error)

	result, err := service.ApplyPayouts(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, result.MissingPositions)
	assert.Equal(t, 1, result.PlayersPaid, "unlisted position pays zero but still writes")
}

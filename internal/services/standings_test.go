package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/engine/internal/models"
)

func TestStandingsRanksByWinnings(t *testing.T) {
	db := newTestDB(t)
	service := NewStandingsService(db, nil, quietLogger())

	tournament := createTournament(t, db, "Ranking Open")
	league := createLeague(t, db, uuid.New(), "user-a", "user-b", "user-c")
	createRoster(t, db, tournament.ID, "user-a", 100000)
	createRoster(t, db, tournament.ID, "user-b", 500000)
	createRoster(t, db, tournament.ID, "user-c", 100000)

	rows, err := service.Standings(context.Background(), league.ID, tournament.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "user-b", rows[0].UserID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "user-a", rows[1].UserID, "equal totals break ties by user ID")
	assert.Equal(t, "user-c", rows[2].UserID)
}

func TestStandingsExcludedTournamentErrors(t *testing.T) {
	db := newTestDB(t)
	service := NewStandingsService(db, nil, quietLogger())

	tournament := createTournament(t, db, "Excluded Standings Open")
	league := createLeague(t, db, uuid.New(), "user-a")
	exclusion := models.LeagueTournamentExclusion{
		ID:           uuid.New(),
		LeagueID:     league.ID,
		TournamentID: tournament.ID,
	}
	require.NoError(t, db.DB.Create(&exclusion).Error)

	_, err := service.Standings(context.Background(), league.ID, tournament.ID)
	assert.Error(t, err)
}

func TestStandingsServedFromCacheUntilInvalidated(t *testing.T) {
	db := newTestDB(t)
	cache := newMemCache()
	service := NewStandingsService(db, cache, quietLogger())

	tournament := createTournament(t, db, "Cache Cup")
	league := createLeague(t, db, uuid.New(), "user-a", "user-b")
	createRoster(t, db, tournament.ID, "user-a", 500000)
	createRoster(t, db, tournament.ID, "user-b", 100000)

	first, err := service.Standings(context.Background(), league.ID, tournament.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "user-a", first[0].UserID)

	// Winnings change underneath, but the cached copy still serves.
	require.NoError(t, db.DB.Model(&models.UserRoster{}).
		Where("user_id = ? AND tournament_id = ?", "user-b", tournament.ID).
		Update("total_winnings_cents", 900000).Error)

	cached, err := service.Standings(context.Background(), league.ID, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	require.NoError(t, service.InvalidateTournament(context.Background(), tournament.ID))

	fresh, err := service.Standings(context.Background(), league.ID, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-b", fresh[0].UserID, "invalidation exposes the new totals")
}

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/pkg/database"
)

func createRoster(t *testing.T, db *database.DB, tournamentID uuid.UUID, userID string, total int64, pickIDs ...uuid.UUID) models.UserRoster {
	t.Helper()
	roster := models.UserRoster{
		ID:                 uuid.New(),
		UserID:             userID,
		TournamentID:       tournamentID,
		TotalWinningsCents: total,
	}
	require.NoError(t, db.DB.Create(&roster).Error)
	for _, pickID := range pickIDs {
		pick := models.RosterPlayer{ID: uuid.New(), RosterID: roster.ID, TournamentPlayerID: pickID}
		require.NoError(t, db.DB.Create(&pick).Error)
	}
	return roster
}

func addVersion(t *testing.T, db *database.DB, roster models.UserRoster, pickIDs ...uuid.UUID) models.RosterVersion {
	t.Helper()
	version := models.RosterVersion{
		ID:           uuid.New(),
		RosterID:     roster.ID,
		TournamentID: roster.TournamentID,
		UserID:       roster.UserID,
	}
	require.NoError(t, db.DB.Create(&version).Error)
	for _, pickID := range pickIDs {
		pick := models.RosterVersionPlayer{ID: uuid.New(), VersionID: version.ID, TournamentPlayerID: pickID}
		require.NoError(t, db.DB.Create(&pick).Error)
	}
	return version
}

func createLeague(t *testing.T, db *database.DB, id uuid.UUID, userIDs ...string) models.League {
	t.Helper()
	league := models.League{ID: id, Name: "League " + id.String()[:8]}
	require.NoError(t, db.DB.Create(&league).Error)
	for _, userID := range userIDs {
		membership := models.LeagueMembership{ID: uuid.New(), LeagueID: league.ID, UserID: userID}
		require.NoError(t, db.DB.Create(&membership).Error)
	}
	return league
}

func setPrize(t *testing.T, db *database.DB, tp models.TournamentPlayer, cents int64) {
	t.Helper()
	require.NoError(t, db.DB.Model(&models.TournamentPlayer{}).
		Where("id = ?", tp.ID).
		Update("prize_money_cents", cents).Error)
}

func TestScanNoRegretWithoutBetterVersion(t *testing.T) {
	db := newTestDB(t)
	service := NewRegretService(db, NewMockNotifier(quietLogger()), quietLogger())

	tournament := createTournament(t, db, "Quiet Open")
	good := createEntrant(t, db, tournament.ID, "Jon Rahm")
	bad := createEntrant(t, db, tournament.ID, "Cut Guy")
	setPrize(t, db, good, 500000)

	createLeague(t, db, uuid.New(), "user-a")
	roster := createRoster(t, db, tournament.ID, "user-a", 500000, good.ID)
	addVersion(t, db, roster, bad.ID)

	notifications, err := service.Scan(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestScanEmitsRegretNotification(t *testing.T) {
	db := newTestDB(t)
	service := NewRegretService(db, NewMockNotifier(quietLogger()), quietLogger())

	tournament := createTournament(t, db, "Regret Masters")
	kept := createEntrant(t, db, tournament.ID, "Cut Guy")
	dropped := createEntrant(t, db, tournament.ID, "Jon Rahm")
	setPrize(t, db, kept, 100000)
	setPrize(t, db, dropped, 500000)

	createLeague(t, db, uuid.New(), "user-a", "user-b", "user-c")
	rosterA := createRoster(t, db, tournament.ID, "user-a", 100000, kept.ID)
	createRoster(t, db, tournament.ID, "user-b", 400000)
	createRoster(t, db, tournament.ID, "user-c", 50000)
	version := addVersion(t, db, rosterA, dropped.ID)

	notifications, err := service.Scan(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	n := notifications[0]
	assert.Equal(t, "user-a", n.UserID)
	assert.Equal(t, rosterA.ID, n.RosterID)
	assert.Equal(t, version.ID, n.RosterVersionID)
	assert.Equal(t, int64(100000), n.CurrentTotalCents)
	assert.Equal(t, int64(500000), n.WouldBeTotalCents)
	assert.Equal(t, 2, n.CurrentRank)
	assert.Equal(t, 1, n.WouldBeRank)
	assert.NotNil(t, n.SentAt, "mock delivery marks the record sent")

	var persisted models.RegretNotification
	require.NoError(t, db.DB.First(&persisted, "id = ?", n.ID).Error)
	assert.Equal(t, n.WouldBeRank, persisted.WouldBeRank)
}

func TestScanEqualRankIsNotNotable(t *testing.T) {
	db := newTestDB(t)
	service := NewRegretService(db, NewMockNotifier(quietLogger()), quietLogger())

	tournament := createTournament(t, db, "Front Runner Open")
	kept := createEntrant(t, db, tournament.ID, "Cut Guy")
	dropped := createEntrant(t, db, tournament.ID, "Jon Rahm")
	setPrize(t, db, kept, 400000)
	setPrize(t, db, dropped, 500000)

	createLeague(t, db, uuid.New(), "user-a", "user-b")
	// Already first; the better version would not change placement.
	rosterA := createRoster(t, db, tournament.ID, "user-a", 400000, kept.ID)
	createRoster(t, db, tournament.ID, "user-b", 100000)
	addVersion(t, db, rosterA, dropped.ID)

	notifications, err := service.Scan(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestScanOneNotificationPerUserAcrossLeagues(t *testing.T) {
	db := newTestDB(t)
	service := NewRegretService(db, NewMockNotifier(quietLogger()), quietLogger())

	tournament := createTournament(t, db, "Two League Open")
	kept := createEntrant(t, db, tournament.ID, "Cut Guy")
	dropped := createEntrant(t, db, tournament.ID, "Jon Rahm")
	setPrize(t, db, kept, 100000)
	setPrize(t, db, dropped, 500000)

	idA, idB := uuid.New(), uuid.New()
	if idB.String() < idA.String() {
		idA, idB = idB, idA
	}
	createLeague(t, db, idA, "user-a", "user-b")
	createLeague(t, db, idB, "user-a", "user-c")

	rosterA := createRoster(t, db, tournament.ID, "user-a", 100000, kept.ID)
	createRoster(t, db, tournament.ID, "user-b", 400000)
	createRoster(t, db, tournament.ID, "user-c", 300000)
	addVersion(t, db, rosterA, dropped.ID)

	notifications, err := service.Scan(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1, "exactly one notification per user")
	assert.Equal(t, idA, notifications[0].LeagueID, "first qualifying league in ID order wins")
}

func TestScanSkipsExcludedTournament(t *testing.T) {
	db := newTestDB(t)
	service := NewRegretService(db, NewMockNotifier(quietLogger()), quietLogger())

	tournament := createTournament(t, db, "Excluded Open")
	kept := createEntrant(t, db, tournament.ID, "Cut Guy")
	dropped := createEntrant(t, db, tournament.ID, "Jon Rahm")
	setPrize(t, db, dropped, 500000)

	league := createLeague(t, db, uuid.New(), "user-a", "user-b")
	exclusion := models.LeagueTournamentExclusion{
		ID:           uuid.New(),
		LeagueID:     league.ID,
		TournamentID: tournament.ID,
	}
	require.NoError(t, db.DB.Create(&exclusion).Error)

	rosterA := createRoster(t, db, tournament.ID, "user-a", 0, kept.ID)
	createRoster(t, db, tournament.ID, "user-b", 400000)
	addVersion(t, db, rosterA, dropped.ID)

	notifications, err := service.Scan(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

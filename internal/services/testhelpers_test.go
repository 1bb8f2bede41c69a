package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.Player{},
		&models.Tournament{},
		&models.TournamentPlayer{},
		&models.PrizeDistribution{},
		&models.UserRoster{},
		&models.RosterPlayer{},
		&models.RosterVersion{},
		&models.RosterVersionPlayer{},
		&models.League{},
		&models.LeagueMembership{},
		&models.LeagueTournamentExclusion{},
		&models.RegretNotification{},
		&models.SyncRun{},
		&models.UserContact{},
	))
	return &database.DB{DB: gdb}
}

// memCache is an in-process Cache for tests.
type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (c *memCache) SetSimple(key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *memCache) GetSimple(key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return fmt.Errorf("key not found")
	}
	return json.Unmarshal(data, dest)
}

func (c *memCache) SetWithRetry(_ context.Context, key string, value interface{}, expiration time.Duration, _ int) error {
	return c.SetSimple(key, value, expiration)
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func createTournament(t *testing.T, db *database.DB, name string) models.Tournament {
	t.Helper()
	tournament := models.Tournament{
		ID:         uuid.New(),
		ExternalID: uuid.NewString(),
		Name:       name,
		StartDate:  time.Now().AddDate(0, 0, -1),
		EndDate:    time.Now().AddDate(0, 0, 3),
		Status:     models.TournamentInProgress,
	}
	require.NoError(t, db.DB.Create(&tournament).Error)
	return tournament
}

func createEntrant(t *testing.T, db *database.DB, tournamentID uuid.UUID, displayName string) models.TournamentPlayer {
	t.Helper()
	player := models.Player{ID: uuid.New(), DisplayName: displayName}
	require.NoError(t, db.DB.Create(&player).Error)

	tp := models.TournamentPlayer{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		PlayerID:     player.ID,
	}
	require.NoError(t, db.DB.Create(&tp).Error)
	tp.Player = &player
	return tp
}

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/pkg/config"
	"github.com/fairwayleague/engine/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// Enable UUID generation for PostgreSQL
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	// Auto migrate all models
	if err := db.AutoMigrate(
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
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_tournament_players_prize ON tournament_players(tournament_id, prize_money_cents DESC)",
		"CREATE INDEX IF NOT EXISTS idx_user_rosters_tournament ON user_rosters(tournament_id)",
		"CREATE INDEX IF NOT EXISTS idx_roster_versions_roster ON roster_versions(roster_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_sync_runs_tournament_started ON sync_runs(tournament_id, started_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_regret_notifications_user_created ON regret_notifications(user_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"user_contacts",
		"sync_runs",
		"regret_notifications",
		"league_tournament_exclusions",
		"league_memberships",
		"leagues",
		"roster_version_players",
		"roster_versions",
		"roster_players",
		"user_rosters",
		"prize_distributions",
		"tournament_players",
		"tournaments",
		"players",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	// Create a sample tournament with a field and payout table
	tournament := &models.Tournament{
		ExternalID: "401580351",
		Name:       "Sample Championship",
		StartDate:  time.Now().AddDate(0, 0, 4),
		EndDate:    time.Now().AddDate(0, 0, 7),
		PurseCents: 2000000000, // $20M purse
		Status:     models.TournamentScheduled,
	}
	if err := db.Create(tournament).Error; err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	// Standard top-heavy payout spread with pre-computed 2- and 3-way splits
	// near the top, where official tables round non-uniformly.
	prizes := []models.PrizeDistribution{
		{TournamentID: tournament.ID, Position: 1, Percentage: 18.0, AmountCents: 360000000,
			TiedAmountsCents: models.Int64Array{288000000, 242666600}},
		{TournamentID: tournament.ID, Position: 2, Percentage: 10.8, AmountCents: 216000000,
			TiedAmountsCents: models.Int64Array{172000000, 145333300}},
		{TournamentID: tournament.ID, Position: 3, Percentage: 6.4, AmountCents: 128000000,
			TiedAmountsCents: models.Int64Array{111000000, 97500000}},
		{TournamentID: tournament.ID, Position: 4, Percentage: 4.7, AmountCents: 94000000,
			TiedAmountsCents: models.Int64Array{85500000, 78666600}},
		{TournamentID: tournament.ID, Position: 5, Percentage: 3.85, AmountCents: 77000000},
		{TournamentID: tournament.ID, Position: 6, Percentage: 3.525, AmountCents: 70500000},
		{TournamentID: tournament.ID, Position: 7, Percentage: 3.275, AmountCents: 65500000},
		{TournamentID: tournament.ID, Position: 8, Percentage: 3.05, AmountCents: 61000000},
		{TournamentID: tournament.ID, Position: 9, Percentage: 2.85, AmountCents: 57000000},
		{TournamentID: tournament.ID, Position: 10, Percentage: 2.675, AmountCents: 53500000},
	}
	if err := db.Create(&prizes).Error; err != nil {
		return fmt.Errorf("failed to create prize distributions: %w", err)
	}

	// Sample field
	names := []struct {
		display string
		feedID  string
	}{
		{"Scottie Scheffler", "9478"},
		{"Ludvig Åberg", "11119"},
		{"Matthias Schmid", "10793"},
		{"Nicolas Echavarria", "10140"},
		{"Thorbjørn Olesen", "4587"},
		{"Joaquín Niemann", "10046"},
	}
	for _, n := range names {
		player := models.Player{DisplayName: n.display}
		player.SetExternalID("scorefeed", n.feedID)
		if err := db.Create(&player).Error; err != nil {
			return fmt.Errorf("failed to create player %s: %w", n.display, err)
		}
		entry := models.TournamentPlayer{
			TournamentID: tournament.ID,
			PlayerID:     player.ID,
		}
		if err := db.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create tournament player: %w", err)
		}
	}

	// A sample league with two members
	league := models.League{Name: "Sample League"}
	if err := db.Create(&league).Error; err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	for _, userID := range []string{uuid.NewString(), uuid.NewString()} {
		membership := models.LeagueMembership{LeagueID: league.ID, UserID: userID}
		if err := db.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
	}

	logrus.Infof("Seeded tournament %s with %d players and %d prize rows", tournament.Name, len(names), len(prizes))
	return nil
}

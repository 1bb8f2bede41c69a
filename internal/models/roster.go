package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRoster is a user's live roster for one tournament. One roster exists per
// (user, tournament); its current picks live in RosterPlayers and every edit of
// an already-submitted roster appends an immutable RosterVersion.
type UserRoster struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID             string    `gorm:"not null;uniqueIndex:idx_user_tournament,priority:1" json:"user_id"`
	TournamentID       uuid.UUID `gorm:"not null;uniqueIndex:idx_user_tournament,priority:2" json:"tournament_id"`
	TotalWinningsCents int64     `gorm:"default:0" json:"total_winnings_cents"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Associations
	Players  []RosterPlayer  `gorm:"foreignKey:RosterID" json:"players,omitempty"`
	Versions []RosterVersion `gorm:"foreignKey:RosterID" json:"versions,omitempty"`
}

// TableName specifies the table name for GORM
func (UserRoster) TableName() string {
	return "user_rosters"
}

// RosterPlayer is a current pick on a live roster.
type RosterPlayer struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RosterID           uuid.UUID         `gorm:"not null;uniqueIndex:idx_roster_pick,priority:1" json:"roster_id"`
	TournamentPlayerID uuid.UUID         `gorm:"not null;uniqueIndex:idx_roster_pick,priority:2" json:"tournament_player_id"`
	TournamentPlayer   *TournamentPlayer `gorm:"foreignKey:TournamentPlayerID" json:"tournament_player,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// TableName specifies the table name for GORM
func (RosterPlayer) TableName() string {
	return "roster_players"
}

// RosterVersion is an immutable snapshot of a roster's picks at the moment the
// user edited a submitted roster. Versions are append-only and never mutated;
// the counterfactual engine reads them to compute what a prior lineup would
// have earned.
type RosterVersion struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RosterID     uuid.UUID `gorm:"not null;index" json:"roster_id"`
	TournamentID uuid.UUID `gorm:"not null;index" json:"tournament_id"`
	UserID       string    `gorm:"not null;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Associations
	Players []RosterVersionPlayer `gorm:"foreignKey:VersionID" json:"players,omitempty"`
}

// TableName specifies the table name for GORM
func (RosterVersion) TableName() string {
	return "roster_versions"
}

// RosterVersionPlayer is one pick within a roster version.
type RosterVersionPlayer struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	VersionID          uuid.UUID         `gorm:"not null;uniqueIndex:idx_version_pick,priority:1" json:"version_id"`
	TournamentPlayerID uuid.UUID         `gorm:"not null;uniqueIndex:idx_version_pick,priority:2" json:"tournament_player_id"`
	TournamentPlayer   *TournamentPlayer `gorm:"foreignKey:TournamentPlayerID" json:"tournament_player,omitempty"`
}

// TableName specifies the table name for GORM
func (RosterVersionPlayer) TableName() string {
	return "roster_version_players"
}

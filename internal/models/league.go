package models

import (
	"time"

	"github.com/google/uuid"
)

// League groups users whose rosters compete against each other for standings.
type League struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Members []LeagueMembership `gorm:"foreignKey:LeagueID" json:"members,omitempty"`
}

// TableName specifies the table name for GORM
func (League) TableName() string {
	return "leagues"
}

// LeagueMembership links a user to a league.
type LeagueMembership struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LeagueID  uuid.UUID `gorm:"not null;uniqueIndex:idx_league_user,priority:1" json:"league_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_league_user,priority:2;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (LeagueMembership) TableName() string {
	return "league_memberships"
}

// LeagueTournamentExclusion flags a tournament as not counting toward a
// league's standings. Absence of a row means the tournament counts.
type LeagueTournamentExclusion struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LeagueID     uuid.UUID `gorm:"not null;uniqueIndex:idx_league_tournament,priority:1" json:"league_id"`
	TournamentID uuid.UUID `gorm:"not null;uniqueIndex:idx_league_tournament,priority:2" json:"tournament_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (LeagueTournamentExclusion) TableName() string {
	return "league_tournament_exclusions"
}

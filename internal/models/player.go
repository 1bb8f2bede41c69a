package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Player is the canonical identity for a tour professional. Players are created
// by admin import or lazily on first unmatched sighting; they are never deleted,
// only merged.
type Player struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DisplayName string            `gorm:"not null;index" json:"display_name"`
	ExternalIDs datatypes.JSONMap `gorm:"type:jsonb" json:"external_ids"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Player) TableName() string {
	return "players"
}

// ExternalID returns the player's ID in the given external system, if recorded.
func (p *Player) ExternalID(system string) (string, bool) {
	if p.ExternalIDs == nil {
		return "", false
	}
	v, ok := p.ExternalIDs[system]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// SetExternalID records the player's ID in the given external system.
func (p *Player) SetExternalID(system, id string) {
	if p.ExternalIDs == nil {
		p.ExternalIDs = datatypes.JSONMap{}
	}
	p.ExternalIDs[system] = id
}

// TournamentPlayer is a player's participation in one tournament. At most one
// row exists per (tournament, player); rows are created at field-setup time and
// never deleted while a roster references them. Score Sync owns position,
// is_tied and total_score; the prize pass owns prize_money_cents.
type TournamentPlayer struct {
	ID              uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TournamentID    uuid.UUID   `gorm:"not null;uniqueIndex:idx_tournament_player,priority:1" json:"tournament_id"`
	Tournament      *Tournament `gorm:"foreignKey:TournamentID" json:"tournament,omitempty"`
	PlayerID        uuid.UUID   `gorm:"not null;uniqueIndex:idx_tournament_player,priority:2" json:"player_id"`
	Player          *Player     `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	Position        *int        `gorm:"index" json:"position"`
	IsTied          bool        `gorm:"default:false" json:"is_tied"`
	TotalScore      *int        `json:"total_score"`
	PrizeMoneyCents int64       `gorm:"default:0" json:"prize_money_cents"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TournamentPlayer) TableName() string {
	return "tournament_players"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// RegretNotification records a counterfactual scenario worth telling a user
// about: a previous version of their roster would have finished at a strictly
// better league rank than the current one did. One notification is recorded
// per user per scan.
type RegretNotification struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID            string     `gorm:"not null;index" json:"user_id"`
	LeagueID          uuid.UUID  `gorm:"not null" json:"league_id"`
	TournamentID      uuid.UUID  `gorm:"not null;index" json:"tournament_id"`
	RosterID          uuid.UUID  `gorm:"not null" json:"roster_id"`
	RosterVersionID   uuid.UUID  `gorm:"not null" json:"roster_version_id"`
	CurrentTotalCents int64      `json:"current_total_cents"`
	WouldBeTotalCents int64      `json:"would_be_total_cents"`
	CurrentRank       int        `json:"current_rank"`
	WouldBeRank       int        `json:"would_be_rank"`
	SentAt            *time.Time `json:"sent_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// TableName specifies the table name for GORM
func (RegretNotification) TableName() string {
	return "regret_notifications"
}

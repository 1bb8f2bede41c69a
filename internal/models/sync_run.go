package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncRun records the outcome of one score-sync pass over an external
// snapshot. Unmatched and ambiguous names are kept so admins can reconcile
// identities by hand without re-running the sync.
type SyncRun struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TournamentID   uuid.UUID   `gorm:"not null;index" json:"tournament_id"`
	StartedAt      time.Time   `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at"`
	UpdatedCount   int         `json:"updated_count"`
	SkippedCount   int         `json:"skipped_count"`
	FailedCount    int         `json:"failed_count"`
	UnmatchedNames StringArray `json:"unmatched_names"`
	AmbiguousNames StringArray `json:"ambiguous_names"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TableName specifies the table name for GORM
func (SyncRun) TableName() string {
	return "sync_runs"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus represents the lifecycle of a tournament
type TournamentStatus string

const (
	TournamentScheduled  TournamentStatus = "scheduled"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentCompleted  TournamentStatus = "completed"
	TournamentCancelled  TournamentStatus = "cancelled"
)

// Tournament represents one tour event that rosters compete over.
type Tournament struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExternalID string           `gorm:"uniqueIndex;not null" json:"external_id"`
	Name       string           `gorm:"not null" json:"name"`
	StartDate  time.Time        `gorm:"not null;index" json:"start_date"`
	EndDate    time.Time        `gorm:"not null" json:"end_date"`
	PurseCents int64            `json:"purse_cents"`
	Status     TournamentStatus `gorm:"type:varchar(50);default:'scheduled'" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Associations
	Players []TournamentPlayer  `gorm:"foreignKey:TournamentID" json:"players,omitempty"`
	Prizes  []PrizeDistribution `gorm:"foreignKey:TournamentID" json:"prizes,omitempty"`
}

// TableName specifies the table name for GORM
func (Tournament) TableName() string {
	return "tournaments"
}

// PrizeDistribution is one row of a tournament's payout table: the money for a
// finishing position, plus pre-computed amounts for N-way ties at that position.
// TiedAmountsCents[0] is the per-player amount for a 2-way tie, [1] for a
// 3-way tie, and so on up to a 10-way tie. Official tour tie splits round
// non-uniformly, so when a pre-computed amount exists it wins over arithmetic.
type PrizeDistribution struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TournamentID     uuid.UUID  `gorm:"not null;uniqueIndex:idx_tournament_position,priority:1" json:"tournament_id"`
	Position         int        `gorm:"not null;uniqueIndex:idx_tournament_position,priority:2" json:"position"`
	Percentage       float64    `json:"percentage"`
	AmountCents      int64      `gorm:"not null" json:"amount_cents"`
	TiedAmountsCents Int64Array `json:"tied_amounts_cents"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PrizeDistribution) TableName() string {
	return "prize_distributions"
}

// TiedAmountCents returns the pre-computed per-player amount for a tie of the
// given size at this position, if the table carries one.
func (d *PrizeDistribution) TiedAmountCents(tieCount int) (int64, bool) {
	idx := tieCount - 2
	if idx < 0 || idx >= len(d.TiedAmountsCents) {
		return 0, false
	}
	amount := d.TiedAmountsCents[idx]
	if amount <= 0 {
		return 0, false
	}
	return amount, true
}

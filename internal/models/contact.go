package models

import (
	"time"

	"github.com/google/uuid"
)

// UserContact holds a user's delivery address for outbound notifications.
// Rows are synced from the identity provider; a user without one simply
// cannot be notified.
type UserContact struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex" json:"user_id"`
	PhoneNumber string    `gorm:"not null" json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserContact) TableName() string {
	return "user_contacts"
}

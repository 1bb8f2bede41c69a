package services

import (
	"context"
	"fmt"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/pkg/database"
)

// LeagueContactResolver looks up user phone numbers from the contact table.
type LeagueContactResolver struct {
	db *database.DB
}

func NewLeagueContactResolver(db *database.DB) *LeagueContactResolver {
	return &LeagueContactResolver{db: db}
}

func (r *LeagueContactResolver) PhoneForUser(ctx context.Context, userID string) (string, error) {
	var contact models.UserContact
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&contact).Error
	if err != nil {
		return "", fmt.Errorf("contact lookup failed: %w", err)
	}
	if contact.PhoneNumber == "" {
		return "", fmt.Errorf("user %s has no phone number", userID)
	}
	return contact.PhoneNumber, nil
}

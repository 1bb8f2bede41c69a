package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/engine/internal/models"
)

func TestPhoneForUser(t *testing.T) {
	db := newTestDB(t)
	resolver := NewLeagueContactResolver(db)

	contact := models.UserContact{ID: uuid.New(), UserID: "user-a", PhoneNumber: "+15551234567"}
	require.NoError(t, db.DB.Create(&contact).Error)
	blank := models.UserContact{ID: uuid.New(), UserID: "user-b", PhoneNumber: ""}
	require.NoError(t, db.DB.Create(&blank).Error)

	phone, err := resolver.PhoneForUser(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", phone)

	_, err = resolver.PhoneForUser(context.Background(), "user-b")
	assert.Error(t, err, "a contact row without a number is unreachable")

	_, err = resolver.PhoneForUser(context.Background(), "user-missing")
	assert.Error(t, err)
}

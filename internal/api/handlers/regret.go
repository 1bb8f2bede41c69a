package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairwayleague/engine/internal/api/middleware"
	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/internal/services"
	"github.com/fairwayleague/engine/pkg/database"
	"github.com/fairwayleague/engine/pkg/utils"
)

type RegretHandler struct {
	db     *database.DB
	regret *services.RegretService
}

func NewRegretHandler(db *database.DB, regret *services.RegretService) *RegretHandler {
	return &RegretHandler{
		db:     db,
		regret: regret,
	}
}

// TriggerScan runs the counterfactual pass for a tournament and returns the
// notifications it produced.
func (h *RegretHandler) TriggerScan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	notifications, err := h.regret.Scan(c.Request.Context(), id)
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{
		"count":         len(notifications),
		"notifications": notifications,
	})
}

// GetMyNotifications returns the authenticated user's regret notifications,
// newest first.
func (h *RegretHandler) GetMyNotifications(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		utils.SendUnauthorized(c, "Authentication required")
		return
	}

	var notifications []models.RegretNotification
	err = h.db.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to load notifications")
		return
	}
	utils.SendSuccess(c, notifications)
}

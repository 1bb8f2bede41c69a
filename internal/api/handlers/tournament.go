package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/pkg/database"
	"github.com/fairwayleague/engine/pkg/utils"
)

type TournamentHandler struct {
	db *database.DB
}

func NewTournamentHandler(db *database.DB) *TournamentHandler {
	return &TournamentHandler{db: db}
}

// ListTournaments returns tournaments, optionally filtered by status
func (h *TournamentHandler) ListTournaments(c *gin.Context) {
	query := h.db.DB.WithContext(c.Request.Context()).Order("start_date DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tournaments []models.Tournament
	if err := query.Find(&tournaments).Error; err != nil {
		utils.SendInternalError(c, "Failed to list tournaments")
		return
	}
	utils.SendSuccess(c, tournaments)
}

// GetTournament returns one tournament with its prize table
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var tournament models.Tournament
	err = h.db.DB.WithContext(c.Request.Context()).
		Preload("Prizes").
		First(&tournament, "id = ?", id).Error
	if err != nil {
		utils.SendNotFound(c, "Tournament not found")
		return
	}
	utils.SendSuccess(c, tournament)
}

// GetLeaderboard returns the tournament's field ordered by position, ranked
// players first.
func (h *TournamentHandler) GetLeaderboard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	var field []models.TournamentPlayer
	err = h.db.DB.WithContext(c.Request.Context()).
		Preload("Player").
		Where("tournament_id = ?", id).
		Order("position IS NULL, position ASC").
		Find(&field).Error
	if err != nil {
		utils.SendInternalError(c, "Failed to load leaderboard")
		return
	}
	if len(field) == 0 {
		utils.SendError(c, http.StatusNotFound, utils.NewAppError(utils.ErrCodeNotFound, "No players in tournament"))
		return
	}
	utils.SendSuccess(c, field)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairwayleague/engine/internal/services"
	"github.com/fairwayleague/engine/pkg/utils"
)

type StandingsHandler struct {
	standings *services.StandingsService
}

func NewStandingsHandler(standings *services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standings: standings}
}

// GetStandings returns a league's ranked rosters for one tournament.
func (h *StandingsHandler) GetStandings(c *gin.Context) {
	leagueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid league ID", err.Error())
		return
	}
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	rows, err := h.standings.Standings(c.Request.Context(), leagueID, tournamentID)
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, rows)
}

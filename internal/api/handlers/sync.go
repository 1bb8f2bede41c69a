package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fairwayleague/engine/internal/services"
	"github.com/fairwayleague/engine/pkg/utils"
)

type SyncHandler struct {
	poller    *services.PollerService
	scoreSync *services.ScoreSyncService
}

func NewSyncHandler(poller *services.PollerService, scoreSync *services.ScoreSyncService) *SyncHandler {
	return &SyncHandler{
		poller:    poller,
		scoreSync: scoreSync,
	}
}

// TriggerSync starts an on-demand reconciliation for a tournament. The run
// happens in the background; status is available from GetSyncStatus.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	if err := h.poller.FetchOnDemand(id); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"status": "sync started"})
}

// GetSyncStatus returns the outcome of the most recent sync pass, served from
// the cache when a fresh copy exists.
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	status, err := h.scoreSync.Status(c.Request.Context(), id)
	if err != nil {
		utils.SendNotFound(c, "No sync runs for tournament")
		return
	}
	utils.SendSuccess(c, status)
}

// GetUnmatchedNames lists the names the last sync could not resolve, for
// manual admin reconciliation.
func (h *SyncHandler) GetUnmatchedNames(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament ID", err.Error())
		return
	}

	run, err := h.scoreSync.LastRun(c.Request.Context(), id)
	if err != nil {
		utils.SendNotFound(c, "No sync runs for tournament")
		return
	}
	utils.SendSuccess(c, gin.H{
		"sync_run_id":     run.ID,
		"unmatched_names": run.UnmatchedNames,
		"ambiguous_names": run.AmbiguousNames,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairwayleague/engine/internal/services"
	"github.com/fairwayleague/engine/pkg/database"
)

type HealthHandler struct {
	db     *database.DB
	poller *services.PollerService
}

func NewHealthHandler(db *database.DB, poller *services.PollerService) *HealthHandler {
	return &HealthHandler{
		db:     db,
		poller: poller,
	}
}

// GetHealth returns basic health status - always returns 200 if server is running
// This is used for basic liveness probes
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "fairway-league-engine",
	})
}

// GetReady returns readiness status - only returns 200 when the database is
// reachable. Used for readiness probes in container orchestration.
func (h *HealthHandler) GetReady(c *gin.Context) {
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// GetPollerStatus returns the scheduler's current state and budget usage.
func (h *HealthHandler) GetPollerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.poller.GetFetchStatus())
}

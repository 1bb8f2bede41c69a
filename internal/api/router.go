package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fairwayleague/engine/internal/api/handlers"
	"github.com/fairwayleague/engine/internal/api/middleware"
	"github.com/fairwayleague/engine/internal/services"
	"github.com/fairwayleague/engine/pkg/config"
	"github.com/fairwayleague/engine/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(
	group *gin.RouterGroup,
	db *database.DB,
	cfg *config.Config,
	scoreSync *services.ScoreSyncService,
	standings *services.StandingsService,
	regret *services.RegretService,
	poller *services.PollerService,
) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, poller)
	tournamentHandler := handlers.NewTournamentHandler(db)
	syncHandler := handlers.NewSyncHandler(poller, scoreSync)
	standingsHandler := handlers.NewStandingsHandler(standings)
	regretHandler := handlers.NewRegretHandler(db, regret)

	// Health endpoints
	group.GET("/health", healthHandler.GetHealth)
	group.GET("/ready", healthHandler.GetReady)

	// Tournament endpoints
	group.GET("/tournaments", tournamentHandler.ListTournaments)
	group.GET("/tournaments/:id", tournamentHandler.GetTournament)
	group.GET("/tournaments/:id/leaderboard", tournamentHandler.GetLeaderboard)
	group.GET("/tournaments/:id/sync/status", syncHandler.GetSyncStatus)

	// Standings endpoints
	group.GET("/leagues/:id/tournaments/:tournamentId/standings", standingsHandler.GetStandings)

	// Authenticated routes
	auth := group.Group("")
	auth.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		auth.GET("/notifications", regretHandler.GetMyNotifications)
	}

	// Admin reconciliation routes
	admin := group.Group("")
	admin.Use(middleware.AdminRequired(cfg.JWTSecret))
	{
		admin.POST("/tournaments/:id/sync", syncHandler.TriggerSync)
		admin.GET("/tournaments/:id/sync/unmatched", syncHandler.GetUnmatchedNames)
		admin.POST("/tournaments/:id/regret-scan", regretHandler.TriggerScan)
		admin.GET("/poller/status", healthHandler.GetPollerStatus)
	}
}

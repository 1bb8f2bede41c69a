package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fairwayleague/engine/internal/api"
	"github.com/fairwayleague/engine/internal/api/middleware"
	"github.com/fairwayleague/engine/internal/providers"
	"github.com/fairwayleague/engine/internal/services"
	"github.com/fairwayleague/engine/pkg/config"
	"github.com/fairwayleague/engine/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	feedClient := providers.NewScoreFeedClient(
		cfg.ScoreFeedURL,
		cfg.ScoreFeedAPIKey,
		cfg.ExternalAPITimeout,
		cfg.CircuitBreakerThreshold,
		cacheService,
		logger,
	)

	scoreSync := services.NewScoreSyncService(db, cacheService, logger)
	prize := services.NewPrizeService(db, logger)
	standings := services.NewStandingsService(db, cacheService, logger)

	var notifier services.Notifier
	if cfg.NotifierProvider == "twilio" {
		notifier = services.NewTwilioNotifier(
			cfg.TwilioAccountSID,
			cfg.TwilioAuthToken,
			cfg.TwilioFromNumber,
			services.NewLeagueContactResolver(db),
			logger,
		)
		logrus.Info("Using Twilio notifier")
	} else {
		notifier = services.NewMockNotifier(logger)
		logrus.Info("Using mock notifier")
	}
	regret := services.NewRegretService(db, notifier, logger)

	schedule := services.PollSchedule{
		ActiveDays:       cfg.ActiveDays(),
		IntervalMinutes:  cfg.PollIntervalMinutes,
		ToleranceMinutes: cfg.PollToleranceMinutes,
	}
	poller := services.NewPollerService(db, feedClient, scoreSync, prize, standings, regret, cacheService, logger, schedule, cfg.MonthlyAPIBudget)
	if cfg.EnablePoller {
		if err := poller.Start(); err != nil {
			logrus.Errorf("Failed to start poller: %v", err)
		}
		defer poller.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, cfg, scoreSync, standings, regret, poller)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

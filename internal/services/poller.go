package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fairwayleague/engine/internal/models"
	"github.com/fairwayleague/engine/internal/providers"
	"github.com/fairwayleague/engine/pkg/database"
)

// PollSchedule decides when an external fetch is allowed. ActiveDays gates by
// weekday; within an active day a fetch fires only near a multiple of
// IntervalMinutes, with ToleranceMinutes absorbing scheduler jitter. The
// schedule bounds total feed calls regardless of how often the caller ticks.
type PollSchedule struct {
	ActiveDays       map[time.Weekday]bool
	IntervalMinutes  int
	ToleranceMinutes int
}

// DefaultPollSchedule polls every day at the given interval with the standard
// two minute tolerance.
func DefaultPollSchedule(intervalMinutes int) PollSchedule {
	days := make(map[time.Weekday]bool, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		days[d] = true
	}
	return PollSchedule{
		ActiveDays:       days,
		IntervalMinutes:  intervalMinutes,
		ToleranceMinutes: 2,
	}
}

// ShouldPollNow reports whether a fetch should happen at the given instant.
// Pure and deterministic: same now, same answer.
func (p PollSchedule) ShouldPollNow(now time.Time) (bool, string) {
	if p.IntervalMinutes <= 0 {
		return false, "polling disabled"
	}
	if !p.ActiveDays[now.Weekday()] {
		return false, fmt.Sprintf("%s not in active schedule", now.Weekday())
	}

	minute := now.Minute()
	remainder := minute % p.IntervalMinutes
	distance := remainder
	if p.IntervalMinutes-remainder < distance {
		distance = p.IntervalMinutes - remainder
	}
	if distance <= p.ToleranceMinutes {
		return true, fmt.Sprintf("minute %d within %dm of interval boundary", minute, p.ToleranceMinutes)
	}
	return false, fmt.Sprintf("minute %d is %dm from nearest interval boundary", minute, distance)
}

// PollerService drives the whole reconciliation pipeline on a schedule: it
// ticks every minute, asks the schedule whether this tick should fetch, pulls
// a snapshot per in-progress tournament and runs sync, payouts and the regret
// scan. A per-tournament failure never blocks the other tournaments.
type PollerService struct {
	db            *database.DB
	feed          *providers.ScoreFeedClient
	scoreSync     *ScoreSyncService
	prize         *PrizeService
	standings     *StandingsService
	regret        *RegretService
	cache         Cache
	logger        *logrus.Logger
	cron          *cron.Cron
	schedule      PollSchedule
	monthlyBudget int

	mu          sync.Mutex
	isRunning   bool
	budgetMonth string
	budgetUsed  int
	lastPollAt  time.Time
	lastReason  string
}

// NewPollerService creates a new poller service
func NewPollerService(
	db *database.DB,
	feed *providers.ScoreFeedClient,
	scoreSync *ScoreSyncService,
	prize *PrizeService,
	standings *StandingsService,
	regret *RegretService,
	cache Cache,
	logger *logrus.Logger,
	schedule PollSchedule,
	monthlyBudget int,
) *PollerService {
	return &PollerService{
		db:            db,
		feed:          feed,
		scoreSync:     scoreSync,
		prize:         prize,
		standings:     standings,
		regret:        regret,
		cache:         cache,
		logger:        logger,
		cron:          cron.New(),
		schedule:      schedule,
		monthlyBudget: monthlyBudget,
	}
}

// Start begins the scheduled polling
func (s *PollerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("poller is already running")
	}

	if _, err := s.cron.AddFunc("* * * * *", s.tick); err != nil {
		return fmt.Errorf("failed to schedule poller: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Poller service started")
	return nil
}

// Stop halts the scheduled polling
func (s *PollerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Poller service stopped")
}

// tick is the minute heartbeat. The schedule, not the heartbeat, decides
// whether the feed actually gets hit.
func (s *PollerService) tick() {
	now := time.Now()
	shouldPoll, reason := s.schedule.ShouldPollNow(now)

	s.mu.Lock()
	s.lastReason = reason
	s.mu.Unlock()

	if !shouldPoll {
		s.logger.Debugf("Skipping poll: %s", reason)
		return
	}
	if !s.consumeBudget(now) {
		s.logger.Warn("Monthly API budget exhausted, skipping poll")
		return
	}

	s.mu.Lock()
	s.lastPollAt = now
	s.mu.Unlock()

	s.pollAllActive(context.Background())
}

// consumeBudget takes one call from the month's budget, resetting the counter
// when the month rolls over. The counter mirrors to the cache so a process
// restart mid-month resumes where the previous process stopped instead of
// granting a fresh budget.
func (s *PollerService) consumeBudget(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	month := now.Format("2006-01")
	if month != s.budgetMonth {
		s.budgetMonth = month
		s.budgetUsed = 0
		if s.cache != nil {
			var used int
			if err := s.cache.GetSimple(PollBudgetCacheKey(month), &used); err == nil && used > 0 {
				s.budgetUsed = used
			}
		}
	}
	if s.monthlyBudget > 0 && s.budgetUsed >= s.monthlyBudget {
		return false
	}
	s.budgetUsed++

	if s.cache != nil {
		if err := s.cache.SetWithRetry(context.Background(), PollBudgetCacheKey(month), s.budgetUsed, 32*24*time.Hour, 3); err != nil {
			s.logger.Warnf("Failed to persist budget counter: %v", err)
		}
	}
	return true
}

// pollAllActive reconciles every in-progress tournament.
func (s *PollerService) pollAllActive(ctx context.Context) {
	var tournaments []models.Tournament
	err := s.db.DB.WithContext(ctx).
		Where("status = ?", models.TournamentInProgress).
		Find(&tournaments).Error
	if err != nil {
		s.logger.Errorf("Failed to load active tournaments: %v", err)
		return
	}
	if len(tournaments) == 0 {
		s.logger.Debug("No in-progress tournaments to poll")
		return
	}

	for _, tournament := range tournaments {
		if err := s.reconcile(ctx, tournament); err != nil {
			s.logger.Errorf("Reconciliation failed for tournament %s (%s): %v", tournament.Name, tournament.ID, err)
		}
	}
}

// reconcile runs the full pipeline for one tournament: fetch, sync, payouts,
// regret scan. An empty feed is normal before play starts and is not an error.
func (s *PollerService) reconcile(ctx context.Context, tournament models.Tournament) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	snapshot, err := s.feed.GetLeaderboard(ctx, tournament.ExternalID)
	if err == providers.ErrNoData {
		s.logger.Infof("No leaderboard data yet for %s", tournament.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("feed fetch: %w", err)
	}

	syncResult, err := s.scoreSync.Sync(ctx, tournament.ID, snapshot)
	if err != nil {
		return fmt.Errorf("score sync: %w", err)
	}
	if syncResult.UpdatedCount == 0 {
		return nil
	}

	if _, err := s.prize.ApplyPayouts(ctx, tournament.ID); err != nil {
		return fmt.Errorf("prize payouts: %w", err)
	}
	if s.standings != nil {
		if err := s.standings.InvalidateTournament(ctx, tournament.ID); err != nil {
			s.logger.Warnf("Failed to invalidate standings for tournament %s: %v", tournament.ID, err)
		}
	}
	if _, err := s.regret.Scan(ctx, tournament.ID); err != nil {
		return fmt.Errorf("regret scan: %w", err)
	}
	return nil
}

// FetchOnDemand triggers reconciliation for one tournament outside the
// schedule, for admin-triggered runs. It does not consume the poll budget
// decision but does count against the monthly total.
func (s *PollerService) FetchOnDemand(tournamentID uuid.UUID) error {
	var tournament models.Tournament
	if err := s.db.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		return fmt.Errorf("tournament not found: %w", err)
	}
	if !s.consumeBudget(time.Now()) {
		return fmt.Errorf("monthly API budget exhausted")
	}

	go func() {
		if err := s.reconcile(context.Background(), tournament); err != nil {
			s.logger.Errorf("On-demand reconciliation failed for tournament %s: %v", tournamentID, err)
		}
	}()
	return nil
}

// GetFetchStatus returns the current status of the poller
func (s *PollerService) GetFetchStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"is_running":       s.isRunning,
		"interval_minutes": s.schedule.IntervalMinutes,
		"budget_month":     s.budgetMonth,
		"budget_used":      s.budgetUsed,
		"monthly_budget":   s.monthlyBudget,
		"last_poll_at":     s.lastPollAt,
		"last_reason":      s.lastReason,
	}
}

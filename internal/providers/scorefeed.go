package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrNoData is returned when the feed answers but carries no leaderboard,
// e.g. before the first round has started. Callers treat it as a non-fatal
// empty result and retry on the next eligible poll window.
var ErrNoData = errors.New("score feed returned no leaderboard data")

// SnapshotRecord is one competitor line from the external feed. The feed is
// untrusted: any field may be missing or malformed, which reduces matched
// coverage but must never crash a sync.
type SnapshotRecord struct {
	Name            string `json:"name"`
	ExternalID      string `json:"external_id,omitempty"`
	PositionLabel   string `json:"position_label"`
	PositionValue   *int   `json:"position_value"`
	TotalScoreLabel string `json:"total_score_label"`
}

// Snapshot is one fetched leaderboard for a tournament.
type Snapshot struct {
	TournamentExternalID string           `json:"tournament_external_id"`
	FetchedAt            time.Time        `json:"fetched_at"`
	Records              []SnapshotRecord `json:"records"`
}

// SnapshotCache is the subset of the cache service the feed client needs.
type SnapshotCache interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}

// ScoreFeedClient fetches leaderboard snapshots from the external scoring API.
// Every fetch burns monthly API budget, so snapshots are cached briefly and
// requests run through a rate limiter and a circuit breaker.
type ScoreFeedClient struct {
	httpClient *http.Client
	cache      SnapshotCache
	logger     *logrus.Logger
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cacheTTL   time.Duration
}

// NewScoreFeedClient creates a new score feed client
func NewScoreFeedClient(baseURL, apiKey string, timeout time.Duration, breakerThreshold int, cache SnapshotCache, logger *logrus.Logger) *ScoreFeedClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if breakerThreshold <= 0 {
		breakerThreshold = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "score-feed",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breakerThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Score feed circuit breaker %s -> %s", from, to)
		},
	})
	return &ScoreFeedClient{
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		breaker:    breaker,
		cacheTTL:   5 * time.Minute,
	}
}

// Feed wire format. The feed sends leaderboard names either "First Last" or
// "Last, First" and position labels like "1", "T4", "CUT", "WD" or "".
type feedLeaderboardResponse struct {
	Event struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"event"`
	Leaderboard []feedCompetitor `json:"leaderboard"`
}

type feedCompetitor struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Position   string `json:"position"`
	Total      string `json:"total"`
}

// GetLeaderboard fetches the current leaderboard snapshot for a tournament,
// serving a recent cached copy when one exists.
func (c *ScoreFeedClient) GetLeaderboard(ctx context.Context, tournamentExternalID string) (*Snapshot, error) {
	cacheKey := fmt.Sprintf("feed:leaderboard:%s", tournamentExternalID)

	if c.cache != nil {
		var cached Snapshot
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && len(cached.Records) > 0 {
			c.logger.Debugf("Serving cached leaderboard for %s", tournamentExternalID)
			return &cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := fmt.Sprintf("%s/leaderboards/%s", c.baseURL, tournamentExternalID)
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchLeaderboard(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	response := result.(*feedLeaderboardResponse)

	if len(response.Leaderboard) == 0 {
		return nil, ErrNoData
	}

	snapshot := &Snapshot{
		TournamentExternalID: tournamentExternalID,
		FetchedAt:            time.Now().UTC(),
	}
	for _, competitor := range response.Leaderboard {
		name := strings.TrimSpace(competitor.PlayerName)
		if name == "" {
			continue
		}
		snapshot.Records = append(snapshot.Records, SnapshotRecord{
			Name:            name,
			ExternalID:      competitor.PlayerID,
			PositionLabel:   strings.TrimSpace(competitor.Position),
			PositionValue:   ParsePositionValue(competitor.Position),
			TotalScoreLabel: strings.TrimSpace(competitor.Total),
		})
	}

	if c.cache != nil && len(snapshot.Records) > 0 {
		if err := c.cache.SetSimple(cacheKey, snapshot, c.cacheTTL); err != nil {
			c.logger.Warnf("Failed to cache leaderboard for %s: %v", tournamentExternalID, err)
		}
	}

	return snapshot, nil
}

func (c *ScoreFeedClient) fetchLeaderboard(ctx context.Context, url string) (*feedLeaderboardResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("score feed returned status %d", resp.StatusCode)
	}

	var response feedLeaderboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard response: %w", err)
	}
	return &response, nil
}

// ParsePositionValue extracts the numeric position from a feed label: "T4"
// and "4" both yield 4. Labels without a ranking ("CUT", "WD", "-", "") yield
// nil, meaning the player has no position yet and should be skipped by sync.
func ParsePositionValue(label string) *int {
	s := strings.TrimSpace(strings.ToUpper(label))
	s = strings.TrimPrefix(s, "T")
	if s == "" {
		return nil
	}
	value, err := strconv.Atoi(s)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

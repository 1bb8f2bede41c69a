package services

import (
	"fmt"
	"sync"
	"time"
)

// NotificationRateLimiter bounds how many notifications one user can receive
// inside a sliding window. Regret scans run after every sync, so without this
// a long final round could text the same user dozens of times.
type NotificationRateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
}

// NewNotificationRateLimiter creates a limiter allowing maxRequests sends per
// user per window.
func NewNotificationRateLimiter(maxRequests int, window time.Duration) *NotificationRateLimiter {
	return &NotificationRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow checks whether the user may receive another notification now, and
// records the send if so.
func (rl *NotificationRateLimiter) Allow(userID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.cleanupOldRequests(userID, now)

	if len(rl.requests[userID]) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d notifications per %v", rl.maxRequests, rl.window)
	}
	rl.requests[userID] = append(rl.requests[userID], now)
	return nil
}

// cleanupOldRequests removes sends outside the time window
func (rl *NotificationRateLimiter) cleanupOldRequests(userID string, now time.Time) {
	requests, exists := rl.requests[userID]
	if !exists {
		return
	}
	cutoff := now.Add(-rl.window)
	valid := requests[:0]
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}
	if len(valid) == 0 {
		delete(rl.requests, userID)
	} else {
		rl.requests[userID] = valid
	}
}

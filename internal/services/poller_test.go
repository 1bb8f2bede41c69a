package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// minuteOf builds a timestamp on the given weekday at the given minute.
// 2026-08-02 is a Sunday.
func minuteOf(day time.Weekday, minute int) time.Time {
	base := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(day)).Add(time.Duration(minute) * time.Minute)
}

func TestShouldPollNowInactiveDay(t *testing.T) {
	schedule := PollSchedule{
		ActiveDays:       map[time.Weekday]bool{time.Thursday: true, time.Friday: true, time.Saturday: true, time.Sunday: true},
		IntervalMinutes:  15,
		ToleranceMinutes: 2,
	}

	for minute := 0; minute < 60; minute++ {
		ok, _ := schedule.ShouldPollNow(minuteOf(time.Tuesday, minute))
		assert.False(t, ok, "Tuesday minute %d must never poll", minute)
	}
}

func TestShouldPollNowBoundaryMinutes(t *testing.T) {
	schedule := DefaultPollSchedule(15)

	tests := []struct {
		minute   int
		expected bool
	}{
		{0, true},
		{1, true},
		{2, true},
		{3, false},
		{12, false},
		{13, true},
		{14, true},
		{15, true},
		{16, true},
		{17, true},
		{18, false},
		{29, true},
		{33, false},
		{45, true},
		{58, true},
		{59, true},
	}
	for _, tt := range tests {
		ok, reason := schedule.ShouldPollNow(minuteOf(time.Thursday, tt.minute))
		assert.Equal(t, tt.expected, ok, "minute %d: %s", tt.minute, reason)
	}
}

func TestShouldPollNowDeterministic(t *testing.T) {
	schedule := DefaultPollSchedule(30)
	now := minuteOf(time.Friday, 31)

	okA, reasonA := schedule.ShouldPollNow(now)
	okB, reasonB := schedule.ShouldPollNow(now)
	assert.Equal(t, okA, okB)
	assert.Equal(t, reasonA, reasonB)
}

func TestShouldPollNowDisabled(t *testing.T) {
	schedule := PollSchedule{IntervalMinutes: 0}
	ok, reason := schedule.ShouldPollNow(minuteOf(time.Thursday, 0))
	assert.False(t, ok)
	assert.Equal(t, "polling disabled", reason)
}

func newBudgetPoller(cache Cache, budget int) *PollerService {
	return NewPollerService(nil, nil, nil, nil, nil, nil, cache, quietLogger(), DefaultPollSchedule(15), budget)
}

func TestConsumeBudgetSurvivesRestart(t *testing.T) {
	cache := newMemCache()
	now := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

	first := newBudgetPoller(cache, 2)
	assert.True(t, first.consumeBudget(now))
	assert.True(t, first.consumeBudget(now))
	assert.False(t, first.consumeBudget(now), "ceiling reached")

	// A fresh process sharing the cache must not get a fresh budget.
	second := newBudgetPoller(cache, 2)
	assert.False(t, second.consumeBudget(now), "counter restored from cache")
}

func TestConsumeBudgetMonthRollover(t *testing.T) {
	poller := newBudgetPoller(newMemCache(), 2)
	july := time.Date(2026, 7, 31, 23, 50, 0, 0, time.UTC)
	august := time.Date(2026, 8, 1, 0, 5, 0, 0, time.UTC)

	assert.True(t, poller.consumeBudget(july))
	assert.True(t, poller.consumeBudget(july))
	assert.False(t, poller.consumeBudget(july), "July ceiling reached")
	assert.True(t, poller.consumeBudget(august), "new month resets the counter")
}

func TestConsumeBudgetUnlimitedWhenZero(t *testing.T) {
	poller := newBudgetPoller(nil, 0)
	now := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		assert.True(t, poller.consumeBudget(now))
	}
}

func TestDefaultPollScheduleCoversEveryDay(t *testing.T) {
	schedule := DefaultPollSchedule(10)
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.True(t, schedule.ActiveDays[d])
	}
	assert.Equal(t, 2, schedule.ToleranceMinutes)
}

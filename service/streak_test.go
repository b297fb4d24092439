package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateDailyClaim_FirstClaim(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	claim := EvaluateDailyClaim(nil, 0, 1, now)

	assert.False(t, claim.AlreadyClaimed)
	assert.Equal(t, 1, claim.Streak)
	assert.Equal(t, int64(50), claim.Reward)
}

func TestEvaluateDailyClaim_SameDay(t *testing.T) {
	last := time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)

	claim := EvaluateDailyClaim(&last, 4, 1, now)

	assert.True(t, claim.AlreadyClaimed)
	assert.Equal(t, time.Hour, claim.NextClaimIn)
}

func TestEvaluateDailyClaim_ConsecutiveDay(t *testing.T) {
	last := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	claim := EvaluateDailyClaim(&last, 4, 1, now)

	assert.False(t, claim.AlreadyClaimed)
	assert.Equal(t, 5, claim.Streak)
}

func TestEvaluateDailyClaim_CalendarDayNotRollingWindow(t *testing.T) {
	// 23:59 then 00:01 the next day is under two hours apart but still
	// two distinct UTC days, so the streak continues.
	last := time.Date(2025, 6, 9, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 0, 1, 0, 0, time.UTC)

	claim := EvaluateDailyClaim(&last, 2, 1, now)

	assert.False(t, claim.AlreadyClaimed)
	assert.Equal(t, 3, claim.Streak)
}

func TestEvaluateDailyClaim_GapResetsStreak(t *testing.T) {
	last := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	claim := EvaluateDailyClaim(&last, 30, 1, now)

	assert.False(t, claim.AlreadyClaimed)
	assert.Equal(t, 1, claim.Streak)
}

func TestEvaluateDailyClaim_TimezoneIndependence(t *testing.T) {
	// Local wall-clock offsets must not shift the claim day.
	est := time.FixedZone("EST", -5*3600)
	last := time.Date(2025, 6, 9, 20, 0, 0, 0, est) // 2025-06-10 01:00 UTC
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	claim := EvaluateDailyClaim(&last, 1, 1, now)

	assert.True(t, claim.AlreadyClaimed)
}

func TestDailyReward(t *testing.T) {
	assert.Equal(t, int64(50), DailyReward(1))
	assert.Equal(t, int64(50), DailyReward(49))
	assert.Equal(t, int64(100), DailyReward(50))
	assert.Equal(t, int64(150), DailyReward(100))
	assert.Equal(t, int64(500), DailyReward(450))
	// Capped beyond level 450.
	assert.Equal(t, int64(500), DailyReward(1000))
}

func TestLuck(t *testing.T) {
	assert.Equal(t, 1.0, Luck(0))
	assert.Equal(t, 1.0, Luck(6))
	assert.Equal(t, 1.5, Luck(7))
	assert.Equal(t, 2.0, Luck(14))
	assert.Equal(t, 10.0, Luck(126))
	// Capped at 10 no matter how long the streak runs.
	assert.Equal(t, 10.0, Luck(1000))
}

func TestSameUTCDay(t *testing.T) {
	a := time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC)
	c := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameUTCDay(a, b))
	assert.False(t, SameUTCDay(b, c))
}

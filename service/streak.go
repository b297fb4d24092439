package service

import (
	"time"
)

// DailyClaim is the decision for one daily-reward attempt, computed
// purely from the last claim time, current streak, level and the clock.
type DailyClaim struct {
	AlreadyClaimed bool
	NextClaimIn    time.Duration
	Streak         int
	Reward         int64
}

// utcDay truncates an instant to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EvaluateDailyClaim decides whether a claim at now continues the streak,
// resets it, or is a same-day repeat. Day boundaries are UTC calendar
// days, not a rolling 24h window: claiming at 23:59 and again at 00:01
// is two distinct days.
func EvaluateDailyClaim(lastClaim *time.Time, streak int, level int, now time.Time) DailyClaim {
	today := utcDay(now)

	if lastClaim != nil {
		lastDay := utcDay(*lastClaim)
		switch {
		case lastDay.Equal(today):
			return DailyClaim{
				AlreadyClaimed: true,
				NextClaimIn:    today.AddDate(0, 0, 1).Sub(now.UTC()),
			}
		case lastDay.Equal(today.AddDate(0, 0, -1)):
			return DailyClaim{Streak: streak + 1, Reward: DailyReward(level)}
		}
	}

	// No prior claim, or a gap of two days or more: streak restarts.
	return DailyClaim{Streak: 1, Reward: DailyReward(level)}
}

// DailyReward is the base daily payout for a level, before tier bonuses.
func DailyReward(level int) int64 {
	reward := int64(DailyRewardBase + DailyRewardPerBand*(level/DailyRewardLevelBand))
	if reward > DailyRewardMax {
		return DailyRewardMax
	}
	return reward
}

// Luck is the streak-derived multiplier consumed by the passive income
// path: +0.5 per full week of streak, capped at 10.
func Luck(streak int) float64 {
	luck := 1 + 0.5*float64(streak/7)
	if luck > 10.0 {
		return 10.0
	}
	return luck
}

// SameUTCDay reports whether two instants fall on the same UTC calendar
// day. Used by the stream-income cap to decide when the daily counter
// resets.
func SameUTCDay(a, b time.Time) bool {
	return utcDay(a).Equal(utcDay(b))
}

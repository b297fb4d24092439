package service

import (
	"time"
)

// Engine constants. Per-guild overridables (commission rate, tier role
// ids) live in the guild settings store; everything here is fixed.
const (
	// Passive chat income: independent cooldown gates per account.
	CoinCooldown = 25 * time.Second
	XPCooldown   = 20 * time.Second

	// Base roll ranges before the tier multiplier is applied.
	PassiveCoinMin = 5
	PassiveCoinMax = 20
	PassiveXPMin   = 10
	PassiveXPMax   = 25

	// Daily reward: 50 base plus 50 per 50 levels, capped.
	DailyRewardBase      = 50
	DailyRewardPerBand   = 50
	DailyRewardLevelBand = 50
	DailyRewardMax       = 500

	// Voice stream payouts.
	StreamCoinsPerMinute = 5
	StreamXPPerMinute    = 40
	StreamDailyCoinCap   = 500
	MinStreamMinutes     = 1

	// Seller's share of the original item price on a sale. The buyer
	// pays the discounted price; the difference is the house cut and is
	// never credited to anyone.
	DefaultCommissionRate = 0.80

	// Marketplace bump, supreme tier only.
	BumpCooldown = 7 * 24 * time.Hour
)

// Rank level thresholds that qualify an account for a tier role.
const (
	EliteLevel   = 50
	MasterLevel  = 75
	SupremeLevel = 100
)

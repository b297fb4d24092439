package models

import (
	"time"
)

// TransferResult summarizes a completed peer payment.
type TransferResult struct {
	Amount      int64
	RecipientID int64
	NewBalance  int64
}

// PurchaseReceipt is returned on a successful marketplace purchase for
// the caller to render and to drive fulfillment.
type PurchaseReceipt struct {
	ItemID        int64
	ItemName      string
	OwnerID       int64
	OriginalPrice int64
	FinalPrice    int64
	Discount      float64
	Commission    int64
	ProductLink   string
	NewBalance    int64
}

// DailyClaimResult reports the outcome of a daily reward claim. When the
// reward was already claimed in the current UTC day, AlreadyClaimed is
// set and NextClaimIn counts down to the next UTC midnight.
type DailyClaimResult struct {
	AlreadyClaimed bool
	NextClaimIn    time.Duration
	Reward         int64
	Streak         int
	NewBalance     int64
	Luck           float64
}

// LevelUp describes a leveling step caused by a single xp application.
// LevelsGained may be more than one when the grant cascades through
// several thresholds; rank re-evaluation still happens exactly once.
type LevelUp struct {
	NewLevel     int
	LevelsGained int
	NewRank      TierName
	RankChanged  bool
}

// StreamReward summarizes the payout for a finished voice stream session.
type StreamReward struct {
	Minutes int64
	Coins   int64
	XP      int64
	LevelUp *LevelUp
}

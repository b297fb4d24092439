package models

import (
	"time"
)

// Account is a member's per-guild economy record. Accounts are created
// lazily on first reference and only deleted when the member leaves the
// guild.
type Account struct {
	UserID           int64      `db:"user_id"`
	GuildID          int64      `db:"guild_id"`
	Balance          int64      `db:"balance"`
	XP               int64      `db:"xp"`
	Level            int        `db:"level"`
	DailyStreak      int        `db:"daily_streak"`
	LastDailyClaim   *time.Time `db:"last_daily_claim"`
	LastCoinClaim    time.Time  `db:"last_coin_claim"`
	LastXPClaim      time.Time  `db:"last_xp_claim"`
	StreamCoinsToday int64      `db:"stream_coins_today"`
	StreamDay        *time.Time `db:"stream_day"`
	LastBump         *time.Time `db:"last_bump"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

package models

// TierName identifies a rank perk bracket.
type TierName string

const (
	TierDefault TierName = "default"
	TierElite   TierName = "elite"
	TierMaster  TierName = "master"
	TierSupreme TierName = "supreme"
)

// PerkTier is the bundle of perks a rank bracket grants.
type PerkTier struct {
	Name         TierName
	Multiplier   float64 // applied to passive coin and xp rolls
	DailyBonus   int64   // flat coins on top of the daily reward
	ShopDiscount float64 // fraction off marketplace prices
	PayLimit     int64   // max coins per transfer
}

// TierRoles maps the ranked tiers to the guild roles that confer them.
// A zero id means the tier is not configured for the guild.
type TierRoles struct {
	Elite   int64
	Master  int64
	Supreme int64
}

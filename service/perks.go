package service

import (
	"guildbank/models"
)

// perkTiers is the static perk table, ordered highest tier first.
var perkTiers = []models.PerkTier{
	{Name: models.TierSupreme, Multiplier: 2.0, DailyBonus: 2000, ShopDiscount: 0.10, PayLimit: 25000},
	{Name: models.TierMaster, Multiplier: 1.5, DailyBonus: 750, ShopDiscount: 0.05, PayLimit: 25000},
	{Name: models.TierElite, Multiplier: 1.2, DailyBonus: 250, ShopDiscount: 0.0, PayLimit: 25000},
	{Name: models.TierDefault, Multiplier: 1.0, DailyBonus: 0, ShopDiscount: 0.0, PayLimit: 10000},
}

// TierByName returns the perk bundle for a tier, defaulting when unknown.
func TierByName(name models.TierName) models.PerkTier {
	for _, t := range perkTiers {
		if t.Name == name {
			return t
		}
	}
	return perkTiers[len(perkTiers)-1]
}

// ResolveTier maps a member's role set to their effective perk tier.
// Tiers are checked from highest to lowest and the first configured tier
// whose role the member holds wins, so the result is independent of the
// order roles appear in. Unconfigured tiers (zero role id) are skipped.
func ResolveTier(cfg models.TierRoles, roleIDs []int64) models.PerkTier {
	held := make(map[int64]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}

	tierRole := map[models.TierName]int64{
		models.TierSupreme: cfg.Supreme,
		models.TierMaster:  cfg.Master,
		models.TierElite:   cfg.Elite,
	}

	for _, t := range perkTiers {
		roleID, ok := tierRole[t.Name]
		if !ok || roleID == 0 {
			continue
		}
		if _, has := held[roleID]; has {
			return t
		}
	}

	return TierByName(models.TierDefault)
}

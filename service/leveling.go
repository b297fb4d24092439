package service

import (
	"guildbank/models"
)

// XPRequired returns the xp needed to advance from level to level+1.
func XPRequired(level int) int64 {
	return 100 + 50*int64(level)
}

// ApplyXP adds gained xp to an account's progress and cascades through as
// many level thresholds as the total covers. The remainder is carried
// into the new level, so xp < XPRequired(level) holds on return. A zero
// gain is a no-op.
func ApplyXP(xp int64, level int, gained int64) (newXP int64, newLevel int, levelsGained int) {
	newXP = xp + gained
	newLevel = level

	for newXP >= XPRequired(newLevel) {
		newXP -= XPRequired(newLevel)
		newLevel++
		levelsGained++
	}

	return newXP, newLevel, levelsGained
}

// RankForLevel returns the highest tier an account's level qualifies it
// for, or false when it qualifies for none.
func RankForLevel(level int) (models.TierName, bool) {
	switch {
	case level >= SupremeLevel:
		return models.TierSupreme, true
	case level >= MasterLevel:
		return models.TierMaster, true
	case level >= EliteLevel:
		return models.TierElite, true
	}
	return models.TierDefault, false
}

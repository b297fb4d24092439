package service

import (
	"context"
	"fmt"

	"guildbank/events"
	"guildbank/models"
)

// RecordBalanceChange records a balance history entry and emits the
// balance change event. This is the single entry point for all balance
// changes in the system; the event reaches subscribers only after the
// surrounding transaction commits.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, guildID int64, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		GuildID:         guildID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}

// publishLevelUp emits a level up event through the unit of work's
// transactional bus.
func publishLevelUp(uow UnitOfWork, guildID, userID int64, up *models.LevelUp) {
	uow.EventBus().Publish(events.LevelUpEvent{
		UserID:       userID,
		GuildID:      guildID,
		NewLevel:     up.NewLevel,
		LevelsGained: up.LevelsGained,
		NewRank:      up.NewRank,
		RankChanged:  up.RankChanged,
	})
}

// applyAccountXP applies gained xp to a locked account in place and
// returns the level change, or nil when no threshold was crossed. Rank
// is re-evaluated once against the final level regardless of how many
// levels the gain cascaded through.
func applyAccountXP(account *models.Account, gained int64) *models.LevelUp {
	prevLevel := account.Level

	newXP, newLevel, levelsGained := ApplyXP(account.XP, account.Level, gained)
	account.XP = newXP
	account.Level = newLevel

	if levelsGained == 0 {
		return nil
	}

	prevRank, _ := RankForLevel(prevLevel)
	newRank, _ := RankForLevel(newLevel)

	return &models.LevelUp{
		NewLevel:     newLevel,
		LevelsGained: levelsGained,
		NewRank:      newRank,
		RankChanged:  newRank != prevRank,
	}
}

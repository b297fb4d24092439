package service

import (
	"context"
	"time"

	"guildbank/events"
	"guildbank/models"
)

type streakService struct {
	uowFactory UnitOfWorkFactory
}

// NewStreakService creates a new streak service
func NewStreakService(uowFactory UnitOfWorkFactory) StreakService {
	return &streakService{
		uowFactory: uowFactory,
	}
}

// ClaimDaily claims the UTC-calendar daily reward. The account row lock
// makes a double-click race resolve to exactly one payout: the loser
// re-reads the updated claim time and lands on the already-claimed path.
func (s *streakService) ClaimDaily(ctx context.Context, guildID, userID int64, tier models.PerkTier, now time.Time) (*models.DailyClaimResult, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, storageErr("lock account", err)
	}

	claim := EvaluateDailyClaim(account.LastDailyClaim, account.DailyStreak, account.Level, now)
	if claim.AlreadyClaimed {
		if err := uow.Rollback(); err != nil {
			return nil, storageErr("rollback transaction", err)
		}
		return &models.DailyClaimResult{
			AlreadyClaimed: true,
			NextClaimIn:    claim.NextClaimIn,
			Streak:         account.DailyStreak,
			NewBalance:     account.Balance,
			Luck:           Luck(account.DailyStreak),
		}, ErrAlreadyClaimedToday
	}

	reward := claim.Reward + tier.DailyBonus
	balanceBefore := account.Balance

	claimTime := now
	account.Balance += reward
	account.DailyStreak = claim.Streak
	account.LastDailyClaim = &claimTime

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, storageErr("update account", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    account.Balance,
		ChangeAmount:    reward,
		TransactionType: models.TransactionTypeDailyReward,
		TransactionMetadata: map[string]any{
			"streak":     claim.Streak,
			"tier_bonus": tier.DailyBonus,
		},
	}
	if err := RecordBalanceChange(ctx, uow, guildID, history); err != nil {
		return nil, storageErr("record balance change", err)
	}

	uow.EventBus().Publish(events.DailyClaimedEvent{
		UserID:  userID,
		GuildID: guildID,
		Reward:  reward,
		Streak:  claim.Streak,
	})

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return &models.DailyClaimResult{
		Reward:     reward,
		Streak:     claim.Streak,
		NewBalance: account.Balance,
		Luck:       Luck(claim.Streak),
	}, nil
}

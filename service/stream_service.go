package service

import (
	"context"
	"time"

	"guildbank/models"
)

type streamService struct {
	uowFactory UnitOfWorkFactory
}

// NewStreamService creates a new stream service
func NewStreamService(uowFactory UnitOfWorkFactory) StreamService {
	return &streamService{
		uowFactory: uowFactory,
	}
}

// RecordStreamSession credits coins and xp for a finished voice stream.
// Coins are capped per UTC day; xp is uncapped. Sessions shorter than a
// minute pay nothing. The daily counter lives on the account row and
// resets lazily when the first session of a new day lands.
func (s *streamService) RecordStreamSession(ctx context.Context, guildID, userID int64, started, ended time.Time) (*models.StreamReward, error) {
	minutes := int64(ended.Sub(started) / time.Minute)
	if minutes < MinStreamMinutes {
		return &models.StreamReward{}, nil
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, storageErr("lock account", err)
	}

	// Reset the cap counter when the session ends on a new UTC day.
	if account.StreamDay == nil || !SameUTCDay(*account.StreamDay, ended) {
		day := utcDay(ended)
		account.StreamDay = &day
		account.StreamCoinsToday = 0
	}

	coins := minutes * StreamCoinsPerMinute
	if remaining := StreamDailyCoinCap - account.StreamCoinsToday; coins > remaining {
		coins = remaining
	}
	if coins < 0 {
		coins = 0
	}
	xp := minutes * StreamXPPerMinute

	balanceBefore := account.Balance
	account.Balance += coins
	account.StreamCoinsToday += coins
	levelUp := applyAccountXP(account, xp)

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, storageErr("update account", err)
	}

	if coins > 0 {
		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    account.Balance,
			ChangeAmount:    coins,
			TransactionType: models.TransactionTypeStreamReward,
			TransactionMetadata: map[string]any{
				"minutes": minutes,
			},
		}
		if err := RecordBalanceChange(ctx, uow, guildID, history); err != nil {
			return nil, storageErr("record balance change", err)
		}
	}

	if levelUp != nil {
		publishLevelUp(uow, guildID, userID, levelUp)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return &models.StreamReward{
		Minutes: minutes,
		Coins:   coins,
		XP:      xp,
		LevelUp: levelUp,
	}, nil
}

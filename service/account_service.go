package service

import (
	"context"
	"math/rand"
	"time"

	"guildbank/models"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// GetAccount retrieves or creates the caller's account
func (s *accountService) GetAccount(ctx context.Context, guildID, userID int64) (*models.Account, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, storageErr("get account", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return account, nil
}

// DeleteAccount removes a departed member's account and listings
func (s *accountService) DeleteAccount(ctx context.Context, guildID, userID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ItemRepository().DeleteByOwner(ctx, userID); err != nil {
		return storageErr("delete listings", err)
	}

	if err := uow.AccountRepository().Delete(ctx, userID); err != nil {
		if err == ErrAccountNotFound {
			// Member never had an account; nothing to remove.
			return uow.Rollback()
		}
		return storageErr("delete account", err)
	}

	if err := uow.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// GetLeaderboard returns the guild's top accounts by level then xp
func (s *accountService) GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Account, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, storageErr("get leaderboard", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return accounts, nil
}

// rollRange returns a uniform roll in [min, max].
func rollRange(min, max int) int64 {
	return int64(min + rand.Intn(max-min+1))
}

// RecordPassiveActivity credits passive coin and xp income for one
// message. The coin and xp streams run on independent cooldowns, so a
// single message can pay coins only, xp only, both, or neither. The row
// lock taken here serializes concurrent messages from the same member:
// the first one through claims the cooldown window and the rest see the
// updated claim times and pay nothing.
func (s *accountService) RecordPassiveActivity(ctx context.Context, guildID, userID int64, tier models.PerkTier, now time.Time) (*models.LevelUp, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, storageErr("lock account", err)
	}

	coinsReady := now.Sub(account.LastCoinClaim) >= CoinCooldown
	xpReady := now.Sub(account.LastXPClaim) >= XPCooldown
	if !coinsReady && !xpReady {
		return nil, uow.Rollback()
	}

	var levelUp *models.LevelUp
	balanceBefore := account.Balance

	var coins int64
	if coinsReady {
		coins = int64(float64(rollRange(PassiveCoinMin, PassiveCoinMax)) * tier.Multiplier)
		account.Balance += coins
		account.LastCoinClaim = now
	}

	if xpReady {
		gained := int64(float64(rollRange(PassiveXPMin, PassiveXPMax)) * tier.Multiplier)
		levelUp = applyAccountXP(account, gained)
		account.LastXPClaim = now
	}

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, storageErr("update account", err)
	}

	if coinsReady {
		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   balanceBefore,
			BalanceAfter:    account.Balance,
			ChangeAmount:    coins,
			TransactionType: models.TransactionTypePassiveCoin,
			TransactionMetadata: map[string]any{
				"tier": string(tier.Name),
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

	return levelUp, nil
}

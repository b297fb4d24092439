package service

import (
	"context"

	"guildbank/models"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{
		uowFactory: uowFactory,
	}
}

// AdjustBalance applies a signed delta to an account. A debit larger
// than the balance clamps to zero instead of failing, so admins can
// always zero out an account without reading it first.
func (s *adminService) AdjustBalance(ctx context.Context, guildID, userID int64, delta int64, adminID int64) (int64, error) {
	if delta == 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return 0, storageErr("lock account", err)
	}

	newBalance, err := uow.AccountRepository().AdjustBalanceClamped(ctx, userID, delta)
	if err != nil {
		return 0, storageErr("adjust balance", err)
	}

	txType := models.TransactionTypeAdminCredit
	if delta < 0 {
		txType = models.TransactionTypeAdminDebit
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    newBalance - account.Balance,
		TransactionType: txType,
		TransactionMetadata: map[string]any{
			"admin_id":        adminID,
			"requested_delta": delta,
		},
	}
	if err := RecordBalanceChange(ctx, uow, guildID, history); err != nil {
		return 0, storageErr("record balance change", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, storageErr("commit transaction", err)
	}

	return newBalance, nil
}

// ResetLevel resets one account's level, xp, and streak. Balance is
// untouched.
func (s *adminService) ResetLevel(ctx context.Context, guildID, userID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return storageErr("lock account", err)
	}

	resetAccount(account)

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return storageErr("update account", err)
	}

	if err := uow.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// ResetAllLevels resets every account in the guild and returns how many
// were touched.
func (s *adminService) ResetAllLevels(ctx context.Context, guildID int64) (int, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().GetAll(ctx)
	if err != nil {
		return 0, storageErr("get accounts", err)
	}

	for _, account := range accounts {
		resetAccount(account)
		if err := uow.AccountRepository().Update(ctx, account); err != nil {
			return 0, storageErr("update account", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, storageErr("commit transaction", err)
	}

	return len(accounts), nil
}

func resetAccount(account *models.Account) {
	account.XP = 0
	account.Level = 1
	account.DailyStreak = 0
	account.LastDailyClaim = nil
}

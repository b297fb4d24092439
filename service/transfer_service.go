package service

import (
	"context"

	"guildbank/models"
)

type transferService struct {
	uowFactory UnitOfWorkFactory
}

// NewTransferService creates a new transfer service
func NewTransferService(uowFactory UnitOfWorkFactory) TransferService {
	return &transferService{
		uowFactory: uowFactory,
	}
}

// Transfer moves amount from sender to recipient atomically. Both rows
// are locked in ascending user id order, so two opposing transfers
// between the same pair cannot deadlock. The sender's rank pay limit is
// enforced per transfer, not per day.
func (s *transferService) Transfer(ctx context.Context, guildID, senderID, recipientID int64, amount int64, senderTier models.PerkTier) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if senderID == recipientID {
		return nil, ErrSelfTransfer
	}
	if amount > senderTier.PayLimit {
		return nil, ErrPayLimitExceeded
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	accounts := uow.AccountRepository()

	// Lock in ascending id order regardless of transfer direction.
	first, second := senderID, recipientID
	if first > second {
		first, second = second, first
	}

	firstAcct, err := accounts.GetOrCreateForUpdate(ctx, first)
	if err != nil {
		return nil, storageErr("lock account", err)
	}
	secondAcct, err := accounts.GetOrCreateForUpdate(ctx, second)
	if err != nil {
		return nil, storageErr("lock account", err)
	}

	sender, recipient := firstAcct, secondAcct
	if sender.UserID != senderID {
		sender, recipient = secondAcct, firstAcct
	}

	if sender.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	if err := accounts.DeductBalance(ctx, senderID, amount); err != nil {
		if err == ErrInsufficientFunds {
			return nil, err
		}
		return nil, storageErr("deduct balance", err)
	}

	if err := accounts.AddBalance(ctx, recipientID, amount); err != nil {
		return nil, storageErr("add balance", err)
	}

	newSenderBalance := sender.Balance - amount

	senderHistory := &models.BalanceHistory{
		UserID:          senderID,
		BalanceBefore:   sender.Balance,
		BalanceAfter:    newSenderBalance,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeTransferOut,
		TransactionMetadata: map[string]any{
			"recipient_id":    recipientID,
			"transfer_amount": amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, guildID, senderHistory); err != nil {
		return nil, storageErr("record balance change", err)
	}

	recipientHistory := &models.BalanceHistory{
		UserID:          recipientID,
		BalanceBefore:   recipient.Balance,
		BalanceAfter:    recipient.Balance + amount,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		TransactionMetadata: map[string]any{
			"sender_id":       senderID,
			"transfer_amount": amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, guildID, recipientHistory); err != nil {
		return nil, storageErr("record balance change", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return &models.TransferResult{
		Amount:      amount,
		RecipientID: recipientID,
		NewBalance:  newSenderBalance,
	}, nil
}

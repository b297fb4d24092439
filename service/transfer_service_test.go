package service

import (
	"context"
	"testing"

	"guildbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTransferFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockBalanceHistoryRepository) {
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockAccounts := new(MockAccountRepository)
	mockHistory := new(MockBalanceHistoryRepository)
	mockUoW.SetRepositories(mockAccounts, nil, nil, mockHistory, nil)
	return mockFactory, mockUoW, mockAccounts, mockHistory
}

func TestTransferService_Transfer_Success(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccounts, mockHistory := newTransferFixture()

	svc := NewTransferService(mockFactory)

	sender := &models.Account{UserID: 100, GuildID: 1, Balance: 5000}
	recipient := &models.Account{UserID: 200, GuildID: 1, Balance: 100}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Locked in ascending user id order.
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(sender, nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(200)).Return(recipient, nil)
	mockAccounts.On("DeductBalance", ctx, int64(100), int64(1500)).Return(nil)
	mockAccounts.On("AddBalance", ctx, int64(200), int64(1500)).Return(nil)

	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 100 &&
			h.ChangeAmount == -1500 &&
			h.BalanceAfter == 3500 &&
			h.TransactionType == models.TransactionTypeTransferOut
	})).Return(nil)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 200 &&
			h.ChangeAmount == 1500 &&
			h.BalanceAfter == 1600 &&
			h.TransactionType == models.TransactionTypeTransferIn
	})).Return(nil)

	result, err := svc.Transfer(ctx, 1, 100, 200, 1500, TierByName(models.TierDefault))

	assert.NoError(t, err)
	assert.Equal(t, int64(1500), result.Amount)
	assert.Equal(t, int64(200), result.RecipientID)
	assert.Equal(t, int64(3500), result.NewBalance)

	mockAccounts.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
}

func TestTransferService_Transfer_LocksInAscendingOrder(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccounts, mockHistory := newTransferFixture()

	svc := NewTransferService(mockFactory)

	// Sender has the higher id; the recipient's row must still be
	// locked first.
	sender := &models.Account{UserID: 900, GuildID: 1, Balance: 5000}
	recipient := &models.Account{UserID: 50, GuildID: 1, Balance: 0}

	var lockOrder []int64
	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(50)).Run(func(args mock.Arguments) {
		lockOrder = append(lockOrder, 50)
	}).Return(recipient, nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(900)).Run(func(args mock.Arguments) {
		lockOrder = append(lockOrder, 900)
	}).Return(sender, nil)
	mockAccounts.On("DeductBalance", ctx, int64(900), int64(100)).Return(nil)
	mockAccounts.On("AddBalance", ctx, int64(50), int64(100)).Return(nil)
	mockHistory.On("Record", ctx, mock.Anything).Return(nil)

	_, err := svc.Transfer(ctx, 1, 900, 50, 100, TierByName(models.TierDefault))

	assert.NoError(t, err)
	assert.Equal(t, []int64{50, 900}, lockOrder)
}

func TestTransferService_Transfer_Validation(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, _ := newTransferFixture()

	svc := NewTransferService(mockFactory)
	tier := TierByName(models.TierDefault)

	_, err := svc.Transfer(ctx, 1, 100, 200, 0, tier)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Transfer(ctx, 1, 100, 200, -50, tier)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Transfer(ctx, 1, 100, 100, 500, tier)
	assert.ErrorIs(t, err, ErrSelfTransfer)

	// Default tier caps payments at 10000 per transfer.
	_, err = svc.Transfer(ctx, 1, 100, 200, 10001, tier)
	assert.ErrorIs(t, err, ErrPayLimitExceeded)

	// Supreme tier allows up to 25000, so the same amount passes
	// validation and fails later only on funds.
	mockFactory.AssertNotCalled(t, "CreateForGuild")
}

func TestTransferService_Transfer_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccounts, _ := newTransferFixture()

	svc := NewTransferService(mockFactory)

	sender := &models.Account{UserID: 100, GuildID: 1, Balance: 100}
	recipient := &models.Account{UserID: 200, GuildID: 1, Balance: 0}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(sender, nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(200)).Return(recipient, nil)

	_, err := svc.Transfer(ctx, 1, 100, 200, 500, TierByName(models.TierDefault))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	mockAccounts.AssertNotCalled(t, "DeductBalance")
	mockAccounts.AssertNotCalled(t, "AddBalance")
	mockUoW.AssertNotCalled(t, "Commit")
}

package service

import (
	"context"
	"testing"
	"time"

	"guildbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newShopFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockItemRepository, *MockGuildSettingsRepository, *MockBalanceHistoryRepository) {
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockAccounts := new(MockAccountRepository)
	mockItems := new(MockItemRepository)
	mockSettings := new(MockGuildSettingsRepository)
	mockHistory := new(MockBalanceHistoryRepository)
	mockUoW.SetRepositories(mockAccounts, mockItems, mockSettings, mockHistory, nil)
	return mockFactory, mockUoW, mockAccounts, mockItems, mockSettings, mockHistory
}

func TestShopService_Purchase_DiscountAndCommissionSplit(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccounts, mockItems, mockSettings, mockHistory := newShopFixture()

	svc := NewShopService(mockFactory)

	item := &models.Item{ID: 7, OwnerID: 200, GuildID: 1, Name: "Preset Pack", Price: 1000, ProductLink: "https://example.com/d"}
	buyer := &models.Account{UserID: 100, GuildID: 1, Balance: 2000}
	owner := &models.Account{UserID: 200, GuildID: 1, Balance: 500}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItems.On("GetByID", ctx, int64(7)).Return(item, nil)
	mockSettings.On("Get", ctx, "commission_rate").Return("", nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(buyer, nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(200)).Return(owner, nil)

	// Supreme buyer: pays 90% of 1000, owner still earns 80% of the
	// original 1000.
	mockAccounts.On("DeductBalance", ctx, int64(100), int64(900)).Return(nil)
	mockAccounts.On("AddBalance", ctx, int64(200), int64(800)).Return(nil)
	mockItems.On("IncrementPurchaseCount", ctx, int64(7)).Return(nil)

	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 100 && h.ChangeAmount == -900 && h.TransactionType == models.TransactionTypePurchase
	})).Return(nil)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == 200 && h.ChangeAmount == 800 && h.TransactionType == models.TransactionTypeSaleCommission
	})).Return(nil)

	receipt, err := svc.Purchase(ctx, 1, 100, 7, TierByName(models.TierSupreme))

	assert.NoError(t, err)
	assert.Equal(t, int64(1000), receipt.OriginalPrice)
	assert.Equal(t, int64(900), receipt.FinalPrice)
	assert.Equal(t, int64(800), receipt.Commission)
	assert.Equal(t, int64(1100), receipt.NewBalance)

	mockAccounts.AssertExpectations(t)
	mockItems.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
}

func TestShopService_Purchase_CustomCommissionRate(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccounts, mockItems, mockSettings, mockHistory := newShopFixture()

	svc := NewShopService(mockFactory)

	item := &models.Item{ID: 3, OwnerID: 200, GuildID: 1, Name: "Overlay", Price: 500}
	buyer := &models.Account{UserID: 100, GuildID: 1, Balance: 1000}
	owner := &models.Account{UserID: 200, GuildID: 1, Balance: 0}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItems.On("GetByID", ctx, int64(3)).Return(item, nil)
	mockSettings.On("Get", ctx, "commission_rate").Return("0.5", nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(buyer, nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(200)).Return(owner, nil)
	mockAccounts.On("DeductBalance", ctx, int64(100), int64(500)).Return(nil)
	mockAccounts.On("AddBalance", ctx, int64(200), int64(250)).Return(nil)
	mockItems.On("IncrementPurchaseCount", ctx, int64(3)).Return(nil)
	mockHistory.On("Record", ctx, mock.Anything).Return(nil)

	receipt, err := svc.Purchase(ctx, 1, 100, 3, TierByName(models.TierDefault))

	assert.NoError(t, err)
	assert.Equal(t, int64(500), receipt.FinalPrice)
	assert.Equal(t, int64(250), receipt.Commission)
}

func TestShopService_Purchase_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockAccounts, mockItems, mockSettings, _ := newShopFixture()

	svc := NewShopService(mockFactory)

	item := &models.Item{ID: 7, OwnerID: 200, GuildID: 1, Name: "Preset Pack", Price: 1000}
	buyer := &models.Account{UserID: 100, GuildID: 1, Balance: 10}
	owner := &models.Account{UserID: 200, GuildID: 1, Balance: 0}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItems.On("GetByID", ctx, int64(7)).Return(item, nil)
	mockSettings.On("Get", ctx, "commission_rate").Return("", nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(buyer, nil)
	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(200)).Return(owner, nil)

	_, err := svc.Purchase(ctx, 1, 100, 7, TierByName(models.TierDefault))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	mockAccounts.AssertNotCalled(t, "DeductBalance")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestShopService_Purchase_ItemNotFound(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, _, mockItems, _, _ := newShopFixture()

	svc := NewShopService(mockFactory)

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockItems.On("GetByID", ctx, int64(42)).Return(nil, ErrItemNotFound)

	_, err := svc.Purchase(ctx, 1, 100, 42, TierByName(models.TierDefault))

	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestShopService_BumpItem(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("requires supreme tier", func(t *testing.T) {
		mockFactory, _, _, _, _, _ := newShopFixture()
		svc := NewShopService(mockFactory)

		err := svc.BumpItem(ctx, 1, 100, 7, TierByName(models.TierMaster), now)
		assert.ErrorIs(t, err, ErrTierRequired)
		mockFactory.AssertNotCalled(t, "CreateForGuild")
	})

	t.Run("rejects non-owner", func(t *testing.T) {
		mockFactory, mockUoW, _, mockItems, _, _ := newShopFixture()
		svc := NewShopService(mockFactory)

		item := &models.Item{ID: 7, OwnerID: 200, GuildID: 1}

		mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockItems.On("GetByID", ctx, int64(7)).Return(item, nil)

		err := svc.BumpItem(ctx, 1, 100, 7, TierByName(models.TierSupreme), now)
		assert.ErrorIs(t, err, ErrNotItemOwner)
	})

	t.Run("enforces weekly cooldown", func(t *testing.T) {
		mockFactory, mockUoW, mockAccounts, mockItems, _, _ := newShopFixture()
		svc := NewShopService(mockFactory)

		item := &models.Item{ID: 7, OwnerID: 100, GuildID: 1}
		lastBump := now.Add(-3 * 24 * time.Hour)
		account := &models.Account{UserID: 100, GuildID: 1, LastBump: &lastBump}

		mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockItems.On("GetByID", ctx, int64(7)).Return(item, nil)
		mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(account, nil)

		err := svc.BumpItem(ctx, 1, 100, 7, TierByName(models.TierSupreme), now)
		assert.ErrorIs(t, err, ErrBumpOnCooldown)
		mockItems.AssertNotCalled(t, "Bump")
	})

	t.Run("bumps after cooldown", func(t *testing.T) {
		mockFactory, mockUoW, mockAccounts, mockItems, _, _ := newShopFixture()
		svc := NewShopService(mockFactory)

		item := &models.Item{ID: 7, OwnerID: 100, GuildID: 1}
		lastBump := now.Add(-8 * 24 * time.Hour)
		account := &models.Account{UserID: 100, GuildID: 1, LastBump: &lastBump}

		mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockItems.On("GetByID", ctx, int64(7)).Return(item, nil)
		mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(account, nil)
		mockItems.On("Bump", ctx, int64(7), now).Return(nil)
		mockAccounts.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
			return a.LastBump != nil && a.LastBump.Equal(now)
		})).Return(nil)

		err := svc.BumpItem(ctx, 1, 100, 7, TierByName(models.TierSupreme), now)
		assert.NoError(t, err)
		mockItems.AssertExpectations(t)
	})
}

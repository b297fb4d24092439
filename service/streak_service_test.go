package service

import (
	"context"
	"testing"
	"time"

	"guildbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newStreakFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockBalanceHistoryRepository) {
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockAccounts := new(MockAccountRepository)
	mockHistory := new(MockBalanceHistoryRepository)
	mockUoW.SetRepositories(mockAccounts, nil, nil, mockHistory, nil)
	return mockFactory, mockUoW, mockAccounts, mockHistory
}

func TestStreakService_ClaimDaily_ContinuesStreakWithTierBonus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	mockFactory, mockUoW, mockAccounts, mockHistory := newStreakFixture()

	svc := NewStreakService(mockFactory)

	account := &models.Account{
		UserID:         100,
		GuildID:        1,
		Balance:        1000,
		Level:          1,
		DailyStreak:    4,
		LastDailyClaim: &yesterday,
	}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(account, nil)
	mockAccounts.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.DailyStreak == 5 && a.LastDailyClaim.Equal(now)
	})).Return(nil)

	// Level 1 daily is 50, elite adds 250.
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.ChangeAmount == 300 && h.TransactionType == models.TransactionTypeDailyReward &&
			h.TransactionMetadata["tier_bonus"] == int64(250)
	})).Return(nil)

	result, err := svc.ClaimDaily(ctx, 1, 100, TierByName(models.TierElite), now)

	assert.NoError(t, err)
	assert.Equal(t, int64(300), result.Reward)
	assert.Equal(t, 5, result.Streak)
	assert.Equal(t, int64(1300), result.NewBalance)
	mockHistory.AssertExpectations(t)
}

func TestStreakService_ClaimDaily_AlreadyClaimedReturnsCountdown(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	mockFactory, mockUoW, mockAccounts, mockHistory := newStreakFixture()

	svc := NewStreakService(mockFactory)

	account := &models.Account{
		UserID:         100,
		GuildID:        1,
		Balance:        1000,
		DailyStreak:    7,
		LastDailyClaim: &earlier,
	}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(account, nil)

	result, err := svc.ClaimDaily(ctx, 1, 100, TierByName(models.TierDefault), now)

	assert.ErrorIs(t, err, ErrAlreadyClaimedToday)
	assert.NotNil(t, result)
	assert.True(t, result.AlreadyClaimed)
	assert.Equal(t, 6*time.Hour, result.NextClaimIn)
	assert.Equal(t, 7, result.Streak)
	assert.Equal(t, 1.5, result.Luck)
	mockAccounts.AssertNotCalled(t, "Update")
	mockHistory.AssertNotCalled(t, "Record")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestStreakService_ClaimDaily_GapResetsStreak(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	threeDaysAgo := now.Add(-72 * time.Hour)
	mockFactory, mockUoW, mockAccounts, mockHistory := newStreakFixture()

	svc := NewStreakService(mockFactory)

	account := &models.Account{
		UserID:         100,
		GuildID:        1,
		Balance:        0,
		Level:          1,
		DailyStreak:    30,
		LastDailyClaim: &threeDaysAgo,
	}

	mockFactory.On("CreateForGuild", int64(1)).Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccounts.On("GetOrCreateForUpdate", ctx, int64(100)).Return(account, nil)
	mockAccounts.On("Update", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.DailyStreak == 1
	})).Return(nil)
	mockHistory.On("Record", ctx, mock.Anything).Return(nil)

	result, err := svc.ClaimDaily(ctx, 1, 100, TierByName(models.TierDefault), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, int64(50), result.Reward)
}

package testutil

import (
	"time"

	"guildbank/models"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(userID, guildID int64) *models.Account {
	now := time.Now()
	return &models.Account{
		UserID:        userID,
		GuildID:       guildID,
		Balance:       0,
		XP:            0,
		Level:         1,
		LastCoinClaim: time.Unix(0, 0).UTC(),
		LastXPClaim:   time.Unix(0, 0).UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateTestItem creates a test listing with default values
func CreateTestItem(ownerID, guildID int64, name string, price int64) *models.Item {
	return &models.Item{
		OwnerID:     ownerID,
		GuildID:     guildID,
		Name:        name,
		Application: "photoshop",
		Category:    "presets",
		Price:       price,
		ProductLink: "https://example.com/download",
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

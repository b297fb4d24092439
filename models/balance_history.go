package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypePassiveCoin    TransactionType = "passive_coin"
	TransactionTypeDailyReward    TransactionType = "daily_reward"
	TransactionTypeStreamReward   TransactionType = "stream_reward"
	TransactionTypeTransferIn     TransactionType = "transfer_in"
	TransactionTypeTransferOut    TransactionType = "transfer_out"
	TransactionTypePurchase       TransactionType = "purchase"
	TransactionTypeSaleCommission TransactionType = "sale_commission"
	TransactionTypeAdminCredit    TransactionType = "admin_credit"
	TransactionTypeAdminDebit     TransactionType = "admin_debit"
)

// BalanceHistory is an append-only audit record of a single balance
// change. Every mutation of Account.Balance writes exactly one row.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}

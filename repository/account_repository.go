package repository

import (
	"context"
	"fmt"

	"guildbank/database"
	"guildbank/models"
	"guildbank/service"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	user_id, guild_id, balance, xp, level, daily_streak,
	last_daily_claim, last_coin_claim, last_xp_claim,
	stream_coins_today, stream_day, last_bump, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q       queryable
	guildID int64
}

// NewAccountRepository creates a new account repository scoped to a guild
func NewAccountRepository(db *database.DB, guildID int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, guildID: guildID}
}

// newAccountRepository creates a new account repository with a transaction and guild scope
func newAccountRepository(tx queryable, guildID int64) *AccountRepository {
	return &AccountRepository{q: tx, guildID: guildID}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.UserID,
		&a.GuildID,
		&a.Balance,
		&a.XP,
		&a.Level,
		&a.DailyStreak,
		&a.LastDailyClaim,
		&a.LastCoinClaim,
		&a.LastXPClaim,
		&a.StreamCoinsToday,
		&a.StreamDay,
		&a.LastBump,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Get retrieves an account, returning ErrAccountNotFound if absent
func (r *AccountRepository) Get(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND guild_id = $2
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, service.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}

	return account, nil
}

// GetOrCreate retrieves an account or creates a fresh one at zero.
// The insert races benignly with concurrent callers: ON CONFLICT makes
// the losing insert a no-op and the follow-up select sees the winner's
// row.
func (r *AccountRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	insert := `
		INSERT INTO accounts (user_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, insert, userID, r.guildID); err != nil {
		return nil, fmt.Errorf("failed to ensure account for user %d: %w", userID, err)
	}

	return r.Get(ctx, userID)
}

// GetOrCreateForUpdate retrieves an account with a row lock held for the
// remainder of the transaction, creating it first if needed
func (r *AccountRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	insert := `
		INSERT INTO accounts (user_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, insert, userID, r.guildID); err != nil {
		return nil, fmt.Errorf("failed to ensure account for user %d: %w", userID, err)
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND guild_id = $2
		FOR UPDATE
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, service.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account for user %d: %w", userID, err)
	}

	return account, nil
}

// Update persists all mutable account fields
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, xp = $2, level = $3, daily_streak = $4,
		    last_daily_claim = $5, last_coin_claim = $6, last_xp_claim = $7,
		    stream_coins_today = $8, stream_day = $9, last_bump = $10,
		    updated_at = NOW()
		WHERE user_id = $11 AND guild_id = $12
	`

	result, err := r.q.Exec(ctx, query,
		account.Balance,
		account.XP,
		account.Level,
		account.DailyStreak,
		account.LastDailyClaim,
		account.LastCoinClaim,
		account.LastXPClaim,
		account.StreamCoinsToday,
		account.StreamDay,
		account.LastBump,
		account.UserID,
		r.guildID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account for user %d: %w", account.UserID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}

	return nil
}

// AddBalance adds to an account's balance atomically
func (r *AccountRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND guild_id = $3
	`

	result, err := r.q.Exec(ctx, query, amount, userID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}

	return nil
}

// DeductBalance deducts from an account's balance atomically, failing
// with ErrInsufficientFunds if the balance cannot cover it
func (r *AccountRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND guild_id = $3 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing account from a short balance
		if _, err := r.Get(ctx, userID); err != nil {
			return err
		}
		return service.ErrInsufficientFunds
	}

	return nil
}

// AdjustBalanceClamped applies a signed delta, clamping the result at
// zero, and returns the new balance
func (r *AccountRepository) AdjustBalanceClamped(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = GREATEST(0, balance + $1), updated_at = NOW()
		WHERE user_id = $2 AND guild_id = $3
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, userID, r.guildID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, service.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for user %d: %w", userID, err)
	}

	return newBalance, nil
}

// GetLeaderboard returns the top accounts ordered by level then xp
func (r *AccountRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY level DESC, xp DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// GetAll returns every account in the guild
func (r *AccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE guild_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// Delete removes an account entirely
func (r *AccountRepository) Delete(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM accounts
		WHERE user_id = $1 AND guild_id = $2
	`

	result, err := r.q.Exec(ctx, query, userID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to delete account for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}

	return nil
}

func collectAccounts(rows pgx.Rows) ([]*models.Account, error) {
	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

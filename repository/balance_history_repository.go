package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"guildbank/database"
	"guildbank/models"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q       queryable
	guildID int64
}

// NewBalanceHistoryRepository creates a new balance history repository scoped to a guild
func NewBalanceHistoryRepository(db *database.DB, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool, guildID: guildID}
}

// newBalanceHistoryRepository creates a new balance history repository with a transaction and guild scope
func newBalanceHistoryRepository(tx queryable, guildID int64) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx, guildID: guildID}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	metadataJSON, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO balance_history
		(user_id, guild_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		history.UserID,
		r.guildID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		metadataJSON,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance history for user %d: %w", history.UserID, err)
	}

	history.GuildID = r.guildID
	return nil
}

// GetByUser returns balance history for a specific user
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	query := `
		SELECT id, user_id, guild_id, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, created_at
		FROM balance_history
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, r.guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.BalanceHistory
	for rows.Next() {
		var entry models.BalanceHistory
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.GuildID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return entries, nil
}

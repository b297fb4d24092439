package repository

import (
	"context"
	"fmt"

	"guildbank/database"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q       queryable
	guildID int64
}

// NewGuildSettingsRepository creates a new guild settings repository scoped to a guild
func NewGuildSettingsRepository(db *database.DB, guildID int64) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool, guildID: guildID}
}

// newGuildSettingsRepository creates a new guild settings repository with a transaction and guild scope
func newGuildSettingsRepository(tx queryable, guildID int64) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx, guildID: guildID}
}

// Get returns a setting value, or "" if unset
func (r *GuildSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT setting_value
		FROM guild_settings
		WHERE guild_id = $1 AND setting_key = $2
	`

	var value string
	err := r.q.QueryRow(ctx, query, r.guildID, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}

	return value, nil
}

// Set upserts a setting value
func (r *GuildSettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO guild_settings (guild_id, setting_key, setting_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, setting_key)
		DO UPDATE SET setting_value = EXCLUDED.setting_value
	`

	if _, err := r.q.Exec(ctx, query, r.guildID, key, value); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}

	return nil
}

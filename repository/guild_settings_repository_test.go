package repository

import (
	"context"
	"testing"

	"guildbank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildSettingsRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildSettingsRepository(testDB.DB, 1)
	ctx := context.Background()

	t.Run("unset key reads as empty", func(t *testing.T) {
		value, err := repo.Get(ctx, "commission_rate")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "elite_role_id", "12345"))

		value, err := repo.Get(ctx, "elite_role_id")
		require.NoError(t, err)
		assert.Equal(t, "12345", value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "commission_rate", "0.80"))
		require.NoError(t, repo.Set(ctx, "commission_rate", "0.65"))

		value, err := repo.Get(ctx, "commission_rate")
		require.NoError(t, err)
		assert.Equal(t, "0.65", value)
	})

	t.Run("scoped to guild", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "supreme_role_id", "999"))

		other := NewGuildSettingsRepository(testDB.DB, 2)
		value, err := other.Get(ctx, "supreme_role_id")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}

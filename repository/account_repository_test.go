package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"guildbank/repository/testutil"
	"guildbank/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetOrCreate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB, 1)
	ctx := context.Background()

	t.Run("creates fresh account at zero", func(t *testing.T) {
		account, err := repo.GetOrCreate(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, int64(100), account.UserID)
		assert.Equal(t, int64(1), account.GuildID)
		assert.Equal(t, int64(0), account.Balance)
		assert.Equal(t, int64(0), account.XP)
		assert.Equal(t, 1, account.Level)
		assert.Equal(t, 0, account.DailyStreak)
		assert.Nil(t, account.LastDailyClaim)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("is idempotent", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, 200)
		require.NoError(t, err)

		require.NoError(t, repo.AddBalance(ctx, 200, 500))

		second, err := repo.GetOrCreate(ctx, 200)
		require.NoError(t, err)

		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Equal(t, int64(500), second.Balance)
	})

	t.Run("concurrent creation yields one row", func(t *testing.T) {
		const workers = 10
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.GetOrCreate(ctx, 300)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}

		accounts, err := repo.GetAll(ctx)
		require.NoError(t, err)
		count := 0
		for _, a := range accounts {
			if a.UserID == 300 {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestAccountRepository_GuildScoping(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	guild1 := NewAccountRepository(testDB.DB, 1)
	guild2 := NewAccountRepository(testDB.DB, 2)
	ctx := context.Background()

	_, err := guild1.GetOrCreate(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, guild1.AddBalance(ctx, 100, 900))

	_, err = guild2.GetOrCreate(ctx, 100)
	require.NoError(t, err)

	a1, err := guild1.Get(ctx, 100)
	require.NoError(t, err)
	a2, err := guild2.Get(ctx, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(900), a1.Balance)
	assert.Equal(t, int64(0), a2.Balance)
}

func TestAccountRepository_DeductBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB, 1)
	ctx := context.Background()

	t.Run("deducts when covered", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, 100)
		require.NoError(t, err)
		require.NoError(t, repo.AddBalance(ctx, 100, 1000))

		require.NoError(t, repo.DeductBalance(ctx, 100, 400))

		account, err := repo.Get(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(600), account.Balance)
	})

	t.Run("rejects overdraft", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, 200)
		require.NoError(t, err)
		require.NoError(t, repo.AddBalance(ctx, 200, 100))

		err = repo.DeductBalance(ctx, 200, 101)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		account, err := repo.Get(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(100), account.Balance)
	})

	t.Run("missing account", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999999, 10)
		assert.ErrorIs(t, err, service.ErrAccountNotFound)
	})

	t.Run("concurrent deductions never overdraw", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, 300)
		require.NoError(t, err)
		require.NoError(t, repo.AddBalance(ctx, 300, 100))

		// Two 60-coin deductions against 100: exactly one can land.
		var wg sync.WaitGroup
		results := make(chan error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- repo.DeductBalance(ctx, 300, 60)
			}()
		}
		wg.Wait()
		close(results)

		var succeeded, short int
		for err := range results {
			switch {
			case err == nil:
				succeeded++
			case err == service.ErrInsufficientFunds:
				short++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, short)

		account, err := repo.Get(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(40), account.Balance)
	})
}

func TestAccountRepository_AdjustBalanceClamped(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB, 1)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, repo.AddBalance(ctx, 100, 300))

	t.Run("credit", func(t *testing.T) {
		newBalance, err := repo.AdjustBalanceClamped(ctx, 100, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(500), newBalance)
	})

	t.Run("debit clamps at zero", func(t *testing.T) {
		newBalance, err := repo.AdjustBalanceClamped(ctx, 100, -10000)
		require.NoError(t, err)
		assert.Equal(t, int64(0), newBalance)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.AdjustBalanceClamped(ctx, 999999, 100)
		assert.ErrorIs(t, err, service.ErrAccountNotFound)
	})
}

func TestAccountRepository_Update(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB, 1)
	ctx := context.Background()

	account, err := repo.GetOrCreate(ctx, 100)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	account.Balance = 1234
	account.XP = 75
	account.Level = 3
	account.DailyStreak = 9
	account.LastDailyClaim = &now
	account.LastCoinClaim = now
	account.LastXPClaim = now
	account.StreamCoinsToday = 250
	account.StreamDay = &day
	account.LastBump = &now

	require.NoError(t, repo.Update(ctx, account))

	got, err := repo.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), got.Balance)
	assert.Equal(t, int64(75), got.XP)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, 9, got.DailyStreak)
	require.NotNil(t, got.LastDailyClaim)
	assert.True(t, got.LastDailyClaim.Equal(now))
	assert.Equal(t, int64(250), got.StreamCoinsToday)
	require.NotNil(t, got.StreamDay)
	assert.True(t, got.StreamDay.Equal(day))
}

func TestAccountRepository_GetLeaderboard(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB, 1)
	ctx := context.Background()

	seed := []struct {
		userID int64
		level  int
		xp     int64
	}{
		{100, 5, 100},
		{200, 10, 50},
		{300, 10, 200},
		{400, 2, 500},
	}
	for _, s := range seed {
		account, err := repo.GetOrCreate(ctx, s.userID)
		require.NoError(t, err)
		account.Level = s.level
		account.XP = s.xp
		require.NoError(t, repo.Update(ctx, account))
	}

	top, err := repo.GetLeaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)

	// Level first, xp breaks ties.
	assert.Equal(t, int64(300), top[0].UserID)
	assert.Equal(t, int64(200), top[1].UserID)
	assert.Equal(t, int64(100), top[2].UserID)
}

func TestAccountRepository_Delete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB, 1)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 100)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, 100))

	_, err = repo.Get(ctx, 100)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)

	err = repo.Delete(ctx, 100)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}

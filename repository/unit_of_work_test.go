package repository

import (
	"context"
	"testing"
	"time"

	"guildbank/events"
	"guildbank/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsChanges(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.CreateForGuild(1)
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.AccountRepository().GetOrCreate(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, uow.AccountRepository().AddBalance(ctx, 100, 750))

	require.NoError(t, uow.Commit())

	check := NewAccountRepository(testDB.DB, 1)
	account, err := check.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(750), account.Balance)
}

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	seed := NewAccountRepository(testDB.DB, 1)
	_, err := seed.GetOrCreate(ctx, 100)
	require.NoError(t, err)

	uow := factory.CreateForGuild(1)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AccountRepository().AddBalance(ctx, 100, 500))
	require.NoError(t, uow.Rollback())

	account, err := seed.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
}

func TestUnitOfWork_EventsFollowTransactionOutcome(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	delivered := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(_ context.Context, e events.Event) {
		delivered <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	t.Run("rollback discards events", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		require.NoError(t, uow.Begin(ctx))
		uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 100, ChangeAmount: 500})
		require.NoError(t, uow.Rollback())

		select {
		case <-delivered:
			t.Fatal("event delivered from rolled-back transaction")
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("commit flushes events", func(t *testing.T) {
		uow := factory.CreateForGuild(1)
		require.NoError(t, uow.Begin(ctx))
		uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 100, ChangeAmount: 500})
		require.NoError(t, uow.Commit())

		select {
		case e := <-delivered:
			change, ok := e.(events.BalanceChangeEvent)
			require.True(t, ok)
			assert.Equal(t, int64(500), change.ChangeAmount)
		case <-time.After(2 * time.Second):
			t.Fatal("committed event never delivered")
		}
	})
}

func TestUnitOfWork_BeginTwiceFails(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.CreateForGuild(1)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}

func TestUnitOfWork_PanicsBeforeBegin(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	uow := factory.CreateForGuild(1)

	assert.Panics(t, func() { uow.AccountRepository() })
}

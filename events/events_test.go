package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBus_EmitDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus()

	levelUps := make(chan Event, 1)
	purchases := make(chan Event, 1)

	bus.Subscribe(EventTypeLevelUp, func(_ context.Context, e Event) {
		levelUps <- e
	})
	bus.Subscribe(EventTypeItemPurchased, func(_ context.Context, e Event) {
		purchases <- e
	})

	bus.Emit(context.Background(), LevelUpEvent{UserID: 100, NewLevel: 51})

	got := waitFor(t, levelUps)
	levelUp, ok := got.(LevelUpEvent)
	require.True(t, ok)
	assert.Equal(t, int64(100), levelUp.UserID)
	assert.Equal(t, 51, levelUp.NewLevel)

	select {
	case <-purchases:
		t.Fatal("purchase handler received a level up event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_EmitFansOutToAllHandlers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventTypeDailyClaimed, func(context.Context, Event) {
			wg.Done()
		})
	}

	bus.Emit(context.Background(), DailyClaimedEvent{UserID: 100})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all handlers ran")
	}
}

func TestBus_RecoverFromHandlerPanic(t *testing.T) {
	bus := NewBus()

	delivered := make(chan Event, 1)

	bus.Subscribe(EventTypeBalanceChange, func(context.Context, Event) {
		panic("handler exploded")
	})
	bus.Subscribe(EventTypeBalanceChange, func(_ context.Context, e Event) {
		delivered <- e
	})

	bus.Emit(context.Background(), BalanceChangeEvent{UserID: 100, ChangeAmount: 25})

	waitFor(t, delivered)
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)

	delivered := make(chan Event, 2)
	bus.Subscribe(EventTypeBalanceChange, func(_ context.Context, e Event) {
		delivered <- e
	})

	txBus.Publish(BalanceChangeEvent{UserID: 100, ChangeAmount: 10})
	txBus.Publish(BalanceChangeEvent{UserID: 100, ChangeAmount: -5})

	select {
	case <-delivered:
		t.Fatal("event leaked before flush")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, txBus.Flush(context.Background()))

	waitFor(t, delivered)
	waitFor(t, delivered)
}

func TestTransactionalBus_DiscardOnRollback(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)

	delivered := make(chan Event, 1)
	bus.Subscribe(EventTypeBalanceChange, func(_ context.Context, e Event) {
		delivered <- e
	})

	txBus.Publish(BalanceChangeEvent{UserID: 100, ChangeAmount: 10})
	txBus.Discard()

	require.NoError(t, txBus.Flush(context.Background()))

	select {
	case <-delivered:
		t.Fatal("discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

package events

import (
	"context"
	"sync"

	"guildbank/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeLevelUp       EventType = "level_up"
	EventTypeDailyClaimed  EventType = "daily_claimed"
	EventTypeItemPurchased EventType = "item_purchased"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent fires after any committed balance mutation.
type BalanceChangeEvent struct {
	UserID          int64
	GuildID         int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// LevelUpEvent fires once per xp application that crossed at least one
// level threshold, regardless of how many levels were gained.
type LevelUpEvent struct {
	UserID       int64
	GuildID      int64
	NewLevel     int
	LevelsGained int
	NewRank      models.TierName
	RankChanged  bool
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// DailyClaimedEvent fires after a successful daily reward claim.
type DailyClaimedEvent struct {
	UserID  int64
	GuildID int64
	Reward  int64
	Streak  int
}

func (e DailyClaimedEvent) Type() EventType {
	return EventTypeDailyClaimed
}

// ItemPurchasedEvent fires after a committed marketplace purchase and
// carries everything the gateway needs for fulfillment and logging.
type ItemPurchasedEvent struct {
	BuyerID     int64
	OwnerID     int64
	GuildID     int64
	ItemID      int64
	ItemName    string
	FinalPrice  int64
	ProductLink string
}

func (e ItemPurchasedEvent) Type() EventType {
	return EventTypeItemPurchased
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Handlers run asynchronously so a slow gateway call can never block
	// the settlement path that emitted the event.
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the real bus only after the database commit succeeds.
// Events from rolled-back transactions are discarded, so subscribers
// never observe a balance change that was never committed.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context that produced them.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

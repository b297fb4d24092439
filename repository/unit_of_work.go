package repository

import (
	"context"
	"fmt"

	"guildbank/database"
	"guildbank/events"
	"guildbank/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	guildID          int64
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	accountRepo      service.AccountRepository
	itemRepo         service.ItemRepository
	guildSettings    service.GuildSettingsRepository
	balanceHistory   service.BalanceHistoryRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
func (f *unitOfWorkFactory) CreateForGuild(guildID int64) service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		guildID:          guildID,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction and guild scope
	u.accountRepo = newAccountRepository(tx, u.guildID)
	u.itemRepo = newItemRepository(tx, u.guildID)
	u.guildSettings = newGuildSettingsRepository(tx, u.guildID)
	u.balanceHistory = newBalanceHistoryRepository(tx, u.guildID)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// ItemRepository returns the item repository for this unit of work
func (u *unitOfWork) ItemRepository() service.ItemRepository {
	if u.itemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.itemRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() service.GuildSettingsRepository {
	if u.guildSettings == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettings
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	if u.balanceHistory == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceHistory
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}

package service

import (
	"context"
	"time"

	"guildbank/events"
	"guildbank/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Get(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) AdjustBalanceClamped(ctx context.Context, userID int64, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAll(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetAll(ctx context.Context) ([]*models.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetNewArrivals(ctx context.Context, limit int) ([]*models.Item, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) Search(ctx context.Context, query string) ([]*models.Item, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetFeatured(ctx context.Context) (*models.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) SetFeatured(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) IncrementPurchaseCount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) Bump(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockItemRepository) UpdatePrice(ctx context.Context, id int64, price int64) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockGuildSettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them.
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are plain fields so tests wire in exactly the mocks they need.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo    AccountRepository
	itemRepo       ItemRepository
	guildSettings  GuildSettingsRepository
	balanceHistory BalanceHistoryRepository
	eventBus       EventPublisher
}

// SetRepositories wires the repositories returned by the getters. Nil
// eventBus falls back to a publisher that drops everything.
func (m *MockUnitOfWork) SetRepositories(
	accounts AccountRepository,
	items ItemRepository,
	settings GuildSettingsRepository,
	history BalanceHistoryRepository,
	eventBus EventPublisher,
) {
	m.accountRepo = accounts
	m.itemRepo = items
	m.guildSettings = settings
	m.balanceHistory = history
	if eventBus == nil {
		eventBus = noopPublisher{}
	}
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) ItemRepository() ItemRepository {
	return m.itemRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.guildSettings
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistory
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}

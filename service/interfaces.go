package service

import (
	"context"
	"time"

	"guildbank/events"
	"guildbank/models"
)

// AccountRepository defines the interface for account data access.
// All methods operate within the guild the repository is scoped to.
type AccountRepository interface {
	// GetOrCreate retrieves an account or creates a fresh one at zero
	GetOrCreate(ctx context.Context, userID int64) (*models.Account, error)

	// GetOrCreateForUpdate retrieves an account with a row lock held for
	// the remainder of the transaction, creating it first if needed
	GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Account, error)

	// Get retrieves an account, returning ErrAccountNotFound if absent
	Get(ctx context.Context, userID int64) (*models.Account, error)

	// Update persists all mutable account fields
	Update(ctx context.Context, account *models.Account) error

	// AddBalance adds to an account's balance atomically
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance deducts from an account's balance atomically,
	// failing with ErrInsufficientFunds if the balance cannot cover it
	DeductBalance(ctx context.Context, userID int64, amount int64) error

	// AdjustBalanceClamped applies a signed delta, clamping the result
	// at zero, and returns the new balance
	AdjustBalanceClamped(ctx context.Context, userID int64, delta int64) (int64, error)

	// GetLeaderboard returns the top accounts ordered by level then xp
	GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error)

	// GetAll returns every account in the guild
	GetAll(ctx context.Context) ([]*models.Account, error)

	// Delete removes an account entirely
	Delete(ctx context.Context, userID int64) error
}

// ItemRepository defines the interface for marketplace item data access.
type ItemRepository interface {
	// Create creates a new listing and fills in its generated ID
	Create(ctx context.Context, item *models.Item) error

	// GetByID retrieves an item, returning ErrItemNotFound if absent
	GetByID(ctx context.Context, id int64) (*models.Item, error)

	// GetAll returns every listing in the guild, newest first
	GetAll(ctx context.Context) ([]*models.Item, error)

	// GetNewArrivals returns the most recently listed or bumped items
	GetNewArrivals(ctx context.Context, limit int) ([]*models.Item, error)

	// GetByOwner returns all listings owned by a user
	GetByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)

	// Search returns listings whose name or application matches the query
	Search(ctx context.Context, query string) ([]*models.Item, error)

	// GetFeatured returns the guild's featured item, if any
	GetFeatured(ctx context.Context) (*models.Item, error)

	// SetFeatured marks an item as featured, clearing any previous one
	SetFeatured(ctx context.Context, id int64) error

	// IncrementPurchaseCount bumps the sold counter for an item
	IncrementPurchaseCount(ctx context.Context, id int64) error

	// Bump refreshes an item's listing timestamp
	Bump(ctx context.Context, id int64, at time.Time) error

	// UpdatePrice changes an item's price
	UpdatePrice(ctx context.Context, id int64, price int64) error

	// Delete removes a listing
	Delete(ctx context.Context, id int64) error

	// DeleteByOwner removes every listing owned by a user
	DeleteByOwner(ctx context.Context, ownerID int64) error
}

// GuildSettingsRepository defines the interface for per-guild settings.
type GuildSettingsRepository interface {
	// Get returns a setting value, or "" if unset
	Get(ctx context.Context, key string) (string, error)

	// Set upserts a setting value
	Set(ctx context.Context, key, value string) error
}

// BalanceHistoryRepository defines the interface for the audit trail.
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// AccountService defines the interface for account operations.
type AccountService interface {
	// GetAccount retrieves or creates the caller's account
	GetAccount(ctx context.Context, guildID, userID int64) (*models.Account, error)

	// DeleteAccount removes a departed member's account and listings
	DeleteAccount(ctx context.Context, guildID, userID int64) error

	// GetLeaderboard returns the guild's top accounts by level then xp
	GetLeaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Account, error)

	// RecordPassiveActivity credits passive coin and xp income for a
	// message, honoring both cooldowns independently. Returns the level
	// change if any threshold was crossed, nil otherwise.
	RecordPassiveActivity(ctx context.Context, guildID, userID int64, tier models.PerkTier, now time.Time) (*models.LevelUp, error)
}

// StreakService defines the interface for daily reward claims.
type StreakService interface {
	// ClaimDaily claims the UTC-calendar daily reward. On a repeat claim
	// the result carries the time until the next window alongside
	// ErrAlreadyClaimedToday.
	ClaimDaily(ctx context.Context, guildID, userID int64, tier models.PerkTier, now time.Time) (*models.DailyClaimResult, error)
}

// TransferService defines the interface for member-to-member payments.
type TransferService interface {
	// Transfer moves amount from sender to recipient atomically
	Transfer(ctx context.Context, guildID, senderID, recipientID int64, amount int64, senderTier models.PerkTier) (*models.TransferResult, error)
}

// ShopService defines the interface for marketplace operations.
type ShopService interface {
	// Purchase settles a purchase: debits the buyer the discounted
	// price, credits the owner their commission, and records both.
	Purchase(ctx context.Context, guildID, buyerID int64, itemID int64, buyerTier models.PerkTier) (*models.PurchaseReceipt, error)

	// ListItem creates a new listing
	ListItem(ctx context.Context, guildID int64, item *models.Item) (*models.Item, error)

	// BumpItem refreshes a listing's position, supreme owners only
	BumpItem(ctx context.Context, guildID, ownerID int64, itemID int64, tier models.PerkTier, now time.Time) error

	// BrowseAll returns every listing in the guild
	BrowseAll(ctx context.Context, guildID int64) ([]*models.Item, error)

	// NewArrivals returns the freshest listings
	NewArrivals(ctx context.Context, guildID int64, limit int) ([]*models.Item, error)

	// Search finds listings by name or application
	Search(ctx context.Context, guildID int64, query string) ([]*models.Item, error)

	// FeatureItem marks an item as the guild's featured listing
	FeatureItem(ctx context.Context, guildID int64, itemID int64) error

	// RemoveItem deletes a listing
	RemoveItem(ctx context.Context, guildID int64, itemID int64) error
}

// AdminService defines the interface for privileged adjustments.
type AdminService interface {
	// AdjustBalance applies a signed delta to an account, clamping the
	// result at zero, and returns the new balance
	AdjustBalance(ctx context.Context, guildID, userID int64, delta int64, adminID int64) (int64, error)

	// ResetLevel resets one account's level, xp, and streak
	ResetLevel(ctx context.Context, guildID, userID int64) error

	// ResetAllLevels resets every account in the guild
	ResetAllLevels(ctx context.Context, guildID int64) (int, error)
}

// StreamService defines the interface for stream session rewards.
type StreamService interface {
	// RecordStreamSession credits coins and xp for a completed stream,
	// subject to the per-day coin cap
	RecordStreamSession(ctx context.Context, guildID, userID int64, started, ended time.Time) (*models.StreamReward, error)
}

// GuildSettingsService defines typed accessors over guild settings.
type GuildSettingsService interface {
	// GetTierRoles returns the configured rank role IDs for a guild
	GetTierRoles(ctx context.Context, guildID int64) (models.TierRoles, error)

	// SetTierRole assigns the role ID for a rank tier
	SetTierRole(ctx context.Context, guildID int64, tier models.TierName, roleID int64) error

	// GetCommissionRate returns the marketplace commission rate
	GetCommissionRate(ctx context.Context, guildID int64) (float64, error)

	// SetCommissionRate updates the marketplace commission rate
	SetCommissionRate(ctx context.Context, guildID int64, rate float64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	ItemRepository() ItemRepository
	GuildSettingsRepository() GuildSettingsRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}

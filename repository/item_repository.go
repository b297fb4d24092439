package repository

import (
	"context"
	"fmt"
	"time"

	"guildbank/database"
	"guildbank/models"
	"guildbank/service"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `
	item_id, owner_id, guild_id, name, application, category, price,
	product_link, screenshot_link, screenshot_link_2, screenshot_link_3,
	purchase_count, featured, created_at`

// ItemRepository implements the ItemRepository interface
type ItemRepository struct {
	q       queryable
	guildID int64
}

// NewItemRepository creates a new item repository scoped to a guild
func NewItemRepository(db *database.DB, guildID int64) *ItemRepository {
	return &ItemRepository{q: db.Pool, guildID: guildID}
}

// newItemRepository creates a new item repository with a transaction and guild scope
func newItemRepository(tx queryable, guildID int64) *ItemRepository {
	return &ItemRepository{q: tx, guildID: guildID}
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var it models.Item
	err := row.Scan(
		&it.ID,
		&it.OwnerID,
		&it.GuildID,
		&it.Name,
		&it.Application,
		&it.Category,
		&it.Price,
		&it.ProductLink,
		&it.Screenshot,
		&it.Screenshot2,
		&it.Screenshot3,
		&it.PurchaseCount,
		&it.Featured,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create creates a new listing and fills in its generated ID
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items
		(owner_id, guild_id, name, application, category, price,
		 product_link, screenshot_link, screenshot_link_2, screenshot_link_3)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING item_id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		item.OwnerID,
		r.guildID,
		item.Name,
		item.Application,
		item.Category,
		item.Price,
		item.ProductLink,
		item.Screenshot,
		item.Screenshot2,
		item.Screenshot3,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item %q: %w", item.Name, err)
	}

	item.GuildID = r.guildID
	return nil
}

// GetByID retrieves an item, returning ErrItemNotFound if absent
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE item_id = $1 AND guild_id = $2
	`

	item, err := scanItem(r.q.QueryRow(ctx, query, id, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, service.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}

	return item, nil
}

// GetAll returns every listing in the guild, newest first
func (r *ItemRepository) GetAll(ctx context.Context) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetNewArrivals returns the most recently listed or bumped items
func (r *ItemRepository) GetNewArrivals(ctx context.Context, limit int) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get new arrivals: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetByOwner returns all listings owned by a user
func (r *ItemRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1 AND owner_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, r.guildID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Search returns listings whose name or application matches the query
func (r *ItemRepository) Search(ctx context.Context, query string) ([]*models.Item, error) {
	sql := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1
		  AND (name ILIKE '%' || $2 || '%' OR application ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, sql, r.guildID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search items for %q: %w", query, err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetFeatured returns the guild's featured item, or nil if none is set
func (r *ItemRepository) GetFeatured(ctx context.Context) (*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE guild_id = $1 AND featured
	`

	item, err := scanItem(r.q.QueryRow(ctx, query, r.guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get featured item: %w", err)
	}

	return item, nil
}

// SetFeatured marks an item as featured, clearing any previous one.
// The clear and set run in the caller's transaction so the partial
// unique index on (guild_id) WHERE featured never trips.
func (r *ItemRepository) SetFeatured(ctx context.Context, id int64) error {
	clear := `
		UPDATE items
		SET featured = FALSE
		WHERE guild_id = $1 AND featured
	`
	if _, err := r.q.Exec(ctx, clear, r.guildID); err != nil {
		return fmt.Errorf("failed to clear featured item: %w", err)
	}

	set := `
		UPDATE items
		SET featured = TRUE
		WHERE item_id = $1 AND guild_id = $2
	`
	result, err := r.q.Exec(ctx, set, id, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to feature item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrItemNotFound
	}

	return nil
}

// IncrementPurchaseCount bumps the sold counter for an item
func (r *ItemRepository) IncrementPurchaseCount(ctx context.Context, id int64) error {
	query := `
		UPDATE items
		SET purchase_count = purchase_count + 1
		WHERE item_id = $1 AND guild_id = $2
	`

	result, err := r.q.Exec(ctx, query, id, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to increment purchase count for item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrItemNotFound
	}

	return nil
}

// Bump refreshes an item's listing timestamp
func (r *ItemRepository) Bump(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE items
		SET created_at = $1
		WHERE item_id = $2 AND guild_id = $3
	`

	result, err := r.q.Exec(ctx, query, at, id, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to bump item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrItemNotFound
	}

	return nil
}

// UpdatePrice changes an item's price
func (r *ItemRepository) UpdatePrice(ctx context.Context, id int64, price int64) error {
	if price <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE items
		SET price = $1
		WHERE item_id = $2 AND guild_id = $3
	`

	result, err := r.q.Exec(ctx, query, price, id, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to update price for item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrItemNotFound
	}

	return nil
}

// Delete removes a listing
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM items
		WHERE item_id = $1 AND guild_id = $2
	`

	result, err := r.q.Exec(ctx, query, id, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrItemNotFound
	}

	return nil
}

// DeleteByOwner removes every listing owned by a user
func (r *ItemRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	query := `
		DELETE FROM items
		WHERE guild_id = $1 AND owner_id = $2
	`

	if _, err := r.q.Exec(ctx, query, r.guildID, ownerID); err != nil {
		return fmt.Errorf("failed to delete items for owner %d: %w", ownerID, err)
	}

	return nil
}

func collectItems(rows pgx.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

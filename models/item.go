package models

import (
	"time"
)

// Item is a marketplace listing. Price is fixed at creation and only an
// admin override may change it; the settlement path never writes it.
// CreatedAt doubles as the "new arrivals" ordering key, which is what a
// bump refreshes.
type Item struct {
	ID            int64     `db:"item_id"`
	OwnerID       int64     `db:"owner_id"`
	GuildID       int64     `db:"guild_id"`
	Name          string    `db:"name"`
	Application   string    `db:"application"`
	Category      string    `db:"category"`
	Price         int64     `db:"price"`
	ProductLink   string    `db:"product_link"`
	Screenshot    string    `db:"screenshot_link"`
	Screenshot2   string    `db:"screenshot_link_2"`
	Screenshot3   string    `db:"screenshot_link_3"`
	PurchaseCount int64     `db:"purchase_count"`
	Featured      bool      `db:"featured"`
	CreatedAt     time.Time `db:"created_at"`
}

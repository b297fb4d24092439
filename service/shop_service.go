package service

import (
	"context"
	"time"

	"guildbank/events"
	"guildbank/models"
)

type shopService struct {
	uowFactory UnitOfWorkFactory
}

// NewShopService creates a new shop service
func NewShopService(uowFactory UnitOfWorkFactory) ShopService {
	return &shopService{
		uowFactory: uowFactory,
	}
}

// Purchase settles a marketplace purchase atomically. The buyer pays the
// tier-discounted price while the owner is credited the commission share
// of the ORIGINAL price, so the discount is absorbed by the house and
// never reduces the seller's cut. Both legs commit together or not at
// all.
func (s *shopService) Purchase(ctx context.Context, guildID, buyerID int64, itemID int64, buyerTier models.PerkTier) (*models.PurchaseReceipt, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		if err == ErrItemNotFound {
			return nil, err
		}
		return nil, storageErr("get item", err)
	}

	rate, err := commissionRate(ctx, uow.GuildSettingsRepository())
	if err != nil {
		return nil, storageErr("get commission rate", err)
	}

	finalPrice := int64(float64(item.Price) * (1 - buyerTier.ShopDiscount))
	commission := int64(float64(item.Price) * rate)

	accounts := uow.AccountRepository()

	// Lock in ascending id order; a self-purchase needs only one lock.
	var buyer, owner *models.Account
	switch {
	case buyerID == item.OwnerID:
		buyer, err = accounts.GetOrCreateForUpdate(ctx, buyerID)
		owner = buyer
	case buyerID < item.OwnerID:
		buyer, err = accounts.GetOrCreateForUpdate(ctx, buyerID)
		if err == nil {
			owner, err = accounts.GetOrCreateForUpdate(ctx, item.OwnerID)
		}
	default:
		owner, err = accounts.GetOrCreateForUpdate(ctx, item.OwnerID)
		if err == nil {
			buyer, err = accounts.GetOrCreateForUpdate(ctx, buyerID)
		}
	}
	if err != nil {
		return nil, storageErr("lock account", err)
	}

	if buyer.Balance < finalPrice {
		return nil, ErrInsufficientFunds
	}

	if err := accounts.DeductBalance(ctx, buyerID, finalPrice); err != nil {
		if err == ErrInsufficientFunds {
			return nil, err
		}
		return nil, storageErr("deduct balance", err)
	}

	buyerAfter := buyer.Balance - finalPrice
	ownerBefore := owner.Balance
	if owner == buyer {
		ownerBefore = buyerAfter
	}

	if commission > 0 {
		if err := accounts.AddBalance(ctx, item.OwnerID, commission); err != nil {
			return nil, storageErr("add commission", err)
		}
	}

	if err := uow.ItemRepository().IncrementPurchaseCount(ctx, itemID); err != nil {
		return nil, storageErr("increment purchase count", err)
	}

	buyerHistory := &models.BalanceHistory{
		UserID:          buyerID,
		BalanceBefore:   buyer.Balance,
		BalanceAfter:    buyerAfter,
		ChangeAmount:    -finalPrice,
		TransactionType: models.TransactionTypePurchase,
		TransactionMetadata: map[string]any{
			"item_id":        itemID,
			"item_name":      item.Name,
			"original_price": item.Price,
			"discount":       buyerTier.ShopDiscount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, guildID, buyerHistory); err != nil {
		return nil, storageErr("record balance change", err)
	}

	ownerHistory := &models.BalanceHistory{
		UserID:          item.OwnerID,
		BalanceBefore:   ownerBefore,
		BalanceAfter:    ownerBefore + commission,
		ChangeAmount:    commission,
		TransactionType: models.TransactionTypeSaleCommission,
		TransactionMetadata: map[string]any{
			"item_id":  itemID,
			"buyer_id": buyerID,
			"rate":     rate,
		},
	}
	if err := RecordBalanceChange(ctx, uow, guildID, ownerHistory); err != nil {
		return nil, storageErr("record balance change", err)
	}

	uow.EventBus().Publish(events.ItemPurchasedEvent{
		BuyerID:     buyerID,
		OwnerID:     item.OwnerID,
		GuildID:     guildID,
		ItemID:      itemID,
		ItemName:    item.Name,
		FinalPrice:  finalPrice,
		ProductLink: item.ProductLink,
	})

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return &models.PurchaseReceipt{
		ItemID:        itemID,
		ItemName:      item.Name,
		OwnerID:       item.OwnerID,
		OriginalPrice: item.Price,
		FinalPrice:    finalPrice,
		Discount:      buyerTier.ShopDiscount,
		Commission:    commission,
		ProductLink:   item.ProductLink,
		NewBalance:    buyerAfter,
	}, nil
}

// ListItem creates a new listing
func (s *shopService) ListItem(ctx context.Context, guildID int64, item *models.Item) (*models.Item, error) {
	if item.Price <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ItemRepository().Create(ctx, item); err != nil {
		return nil, storageErr("create item", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return item, nil
}

// BumpItem refreshes a listing's position. Supreme owners only, once
// per item per week.
func (s *shopService) BumpItem(ctx context.Context, guildID, ownerID int64, itemID int64, tier models.PerkTier, now time.Time) error {
	if tier.Name != models.TierSupreme {
		return ErrTierRequired
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		if err == ErrItemNotFound {
			return err
		}
		return storageErr("get item", err)
	}
	if item.OwnerID != ownerID {
		return ErrNotItemOwner
	}

	account, err := uow.AccountRepository().GetOrCreateForUpdate(ctx, ownerID)
	if err != nil {
		return storageErr("lock account", err)
	}

	if account.LastBump != nil && now.Sub(*account.LastBump) < BumpCooldown {
		return ErrBumpOnCooldown
	}

	if err := uow.ItemRepository().Bump(ctx, itemID, now); err != nil {
		return storageErr("bump item", err)
	}

	bumpTime := now
	account.LastBump = &bumpTime
	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return storageErr("update account", err)
	}

	if err := uow.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// BrowseAll returns every listing in the guild
func (s *shopService) BrowseAll(ctx context.Context, guildID int64) ([]*models.Item, error) {
	return s.listItems(ctx, guildID, func(ctx context.Context, repo ItemRepository) ([]*models.Item, error) {
		return repo.GetAll(ctx)
	})
}

// NewArrivals returns the freshest listings
func (s *shopService) NewArrivals(ctx context.Context, guildID int64, limit int) ([]*models.Item, error) {
	return s.listItems(ctx, guildID, func(ctx context.Context, repo ItemRepository) ([]*models.Item, error) {
		return repo.GetNewArrivals(ctx, limit)
	})
}

// Search finds listings by name or application
func (s *shopService) Search(ctx context.Context, guildID int64, query string) ([]*models.Item, error) {
	return s.listItems(ctx, guildID, func(ctx context.Context, repo ItemRepository) ([]*models.Item, error) {
		return repo.Search(ctx, query)
	})
}

func (s *shopService) listItems(ctx context.Context, guildID int64, list func(context.Context, ItemRepository) ([]*models.Item, error)) ([]*models.Item, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	items, err := list(ctx, uow.ItemRepository())
	if err != nil {
		return nil, storageErr("list items", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageErr("commit transaction", err)
	}

	return items, nil
}

// FeatureItem marks an item as the guild's featured listing
func (s *shopService) FeatureItem(ctx context.Context, guildID int64, itemID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ItemRepository().SetFeatured(ctx, itemID); err != nil {
		if err == ErrItemNotFound {
			return err
		}
		return storageErr("feature item", err)
	}

	if err := uow.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// RemoveItem deletes a listing
func (s *shopService) RemoveItem(ctx context.Context, guildID int64, itemID int64) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ItemRepository().Delete(ctx, itemID); err != nil {
		if err == ErrItemNotFound {
			return err
		}
		return storageErr("delete item", err)
	}

	if err := uow.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

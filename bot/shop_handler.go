package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"guildbank/bot/common"
	"guildbank/models"
	"guildbank/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleShopCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "browse":
		b.handleShopBrowse(s, i, options[0])
	case "new":
		b.handleShopNew(s, i, options[0])
	case "search":
		b.handleShopSearch(s, i, options[0])
	case "add":
		b.handleShopAdd(s, i, options[0])
	case "buy":
		b.handleShopBuy(s, i, options[0])
	case "bump":
		b.handleShopBump(s, i, options[0])
	}
}

// itemLines renders listings for an embed, featured item starred first.
func itemLines(items []*models.Item) string {
	var sb strings.Builder
	for _, item := range items {
		marker := ""
		if item.Featured {
			marker = "⭐ "
		}
		fmt.Fprintf(&sb, "%s`#%d` **%s** — %s coins · sold %d · <@%d>\n",
			marker, item.ID, item.Name, common.FormatCoins(item.Price), item.PurchaseCount, item.OwnerID)
	}
	return sb.String()
}

func (b *Bot) respondWithItems(s *discordgo.Session, i *discordgo.InteractionCreate, title string, items []*models.Item) {
	if len(items) == 0 {
		common.RespondWithError(s, i, "No listings found.")
		return
	}

	// Featured listings float to the top of the browse view.
	ordered := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if item.Featured {
			ordered = append(ordered, item)
		}
	}
	for _, item := range items {
		if !item.Featured {
			ordered = append(ordered, item)
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: itemLines(ordered),
		Color:       0x57F287,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.WithError(err).Error("Error responding to shop command")
	}
}

func (b *Bot) handleShopBrowse(s *discordgo.Session, i *discordgo.InteractionCreate, _ *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	items, err := b.shopService.BrowseAll(ctx, guildID)
	if err != nil {
		log.WithError(err).Error("Failed to browse shop")
		common.RespondWithError(s, i, "Unable to load the shop. Please try again.")
		return
	}

	b.respondWithItems(s, i, "🛒 Marketplace", items)
}

func (b *Bot) handleShopNew(s *discordgo.Session, i *discordgo.InteractionCreate, _ *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	items, err := b.shopService.NewArrivals(ctx, guildID, 10)
	if err != nil {
		log.WithError(err).Error("Failed to load new arrivals")
		common.RespondWithError(s, i, "Unable to load new arrivals. Please try again.")
		return
	}

	b.respondWithItems(s, i, "🆕 New Arrivals", items)
}

func (b *Bot) handleShopSearch(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var query string
	for _, sub := range opt.Options {
		if sub.Name == "query" {
			query = sub.StringValue()
		}
	}

	items, err := b.shopService.Search(ctx, guildID, query)
	if err != nil {
		log.WithError(err).Error("Failed to search shop")
		common.RespondWithError(s, i, "Unable to search the shop. Please try again.")
		return
	}

	b.respondWithItems(s, i, fmt.Sprintf("🔎 Results for %q", query), items)
}

func (b *Bot) handleShopAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, ownerID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	item := &models.Item{OwnerID: ownerID}
	for _, sub := range opt.Options {
		switch sub.Name {
		case "name":
			item.Name = sub.StringValue()
		case "price":
			item.Price = sub.IntValue()
		case "link":
			item.ProductLink = sub.StringValue()
		case "application":
			item.Application = sub.StringValue()
		case "category":
			item.Category = sub.StringValue()
		case "screenshot":
			item.Screenshot = sub.StringValue()
		}
	}

	created, err := b.shopService.ListItem(ctx, guildID, item)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			common.RespondWithError(s, i, "Price must be positive.")
			return
		}
		log.WithError(err).Error("Failed to list item")
		common.RespondWithError(s, i, "Unable to list your item. Please try again.")
		return
	}

	message := fmt.Sprintf("Listed **%s** for **%s coins** (item `#%d`).",
		created.Name, common.FormatCoins(created.Price), created.ID)
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.WithError(err).Error("Error responding to shop add command")
	}
}

func (b *Bot) handleShopBuy(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, buyerID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var itemID int64
	for _, sub := range opt.Options {
		if sub.Name == "id" {
			itemID = sub.IntValue()
		}
	}

	tier := b.memberTier(ctx, guildID, i.Member)
	receipt, err := b.shopService.Purchase(ctx, guildID, buyerID, itemID, tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			common.RespondWithError(s, i, "That item does not exist.")
		case errors.Is(err, service.ErrInsufficientFunds):
			common.RespondWithError(s, i, "Insufficient balance for this purchase.")
		default:
			log.WithError(err).Error("Failed to settle purchase")
			common.RespondWithError(s, i, "Unable to complete the purchase. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("Bought **%s** for **%s coins**", receipt.ItemName, common.FormatCoins(receipt.FinalPrice))
	if receipt.Discount > 0 {
		message += fmt.Sprintf(" (%.0f%% rank discount off %s)", receipt.Discount*100, common.FormatCoins(receipt.OriginalPrice))
	}
	message += fmt.Sprintf(". New balance: **%s coins**. Check your DMs for the download link!", common.FormatCoins(receipt.NewBalance))
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.WithError(err).Error("Error responding to shop buy command")
	}
}

func (b *Bot) handleShopBump(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, ownerID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var itemID int64
	for _, sub := range opt.Options {
		if sub.Name == "id" {
			itemID = sub.IntValue()
		}
	}

	tier := b.memberTier(ctx, guildID, i.Member)
	if err := b.shopService.BumpItem(ctx, guildID, ownerID, itemID, tier, timeNow()); err != nil {
		switch {
		case errors.Is(err, service.ErrTierRequired):
			common.RespondWithError(s, i, "Bumping is a **supreme** rank perk.")
		case errors.Is(err, service.ErrItemNotFound):
			common.RespondWithError(s, i, "That item does not exist.")
		case errors.Is(err, service.ErrNotItemOwner):
			common.RespondWithError(s, i, "You can only bump your own listings.")
		case errors.Is(err, service.ErrBumpOnCooldown):
			common.RespondWithError(s, i, "You can bump once per week.")
		default:
			log.WithError(err).Error("Failed to bump item")
			common.RespondWithError(s, i, "Unable to bump the listing. Please try again.")
		}
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Item `#%d` bumped to the top of new arrivals.", itemID), false); err != nil {
		log.WithError(err).Error("Error responding to shop bump command")
	}
}

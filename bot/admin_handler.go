package bot

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"guildbank/bot/common"
	"guildbank/models"
	"guildbank/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleAdminCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.isAdmin(i) {
		common.RespondWithError(s, i, "You are not allowed to use admin commands.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "give":
		b.handleAdminAdjust(s, i, options[0], 1)
	case "take":
		b.handleAdminAdjust(s, i, options[0], -1)
	case "resetlevel":
		b.handleAdminResetLevel(s, i, options[0])
	case "setrankrole":
		b.handleAdminSetRankRole(s, i, options[0])
	case "setcommission":
		b.handleAdminSetCommission(s, i, options[0])
	case "featureitem":
		b.handleAdminFeatureItem(s, i, options[0])
	case "removeitem":
		b.handleAdminRemoveItem(s, i, options[0])
	}
}

func (b *Bot) handleAdminAdjust(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption, sign int64) {
	ctx := context.Background()

	guildID, adminID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var amount int64
	var targetUser *discordgo.User
	for _, sub := range opt.Options {
		switch sub.Name {
		case "amount":
			amount = sub.IntValue()
		case "user":
			targetUser = sub.UserValue(s)
		}
	}

	if targetUser == nil {
		common.RespondWithError(s, i, "Invalid target member.")
		return
	}
	if amount <= 0 {
		common.RespondWithError(s, i, "Amount must be positive.")
		return
	}

	targetID, err := parseSnowflake(targetUser.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	newBalance, err := b.adminService.AdjustBalance(ctx, guildID, targetID, sign*amount, adminID)
	if err != nil {
		log.WithError(err).Error("Failed to adjust balance")
		common.RespondWithError(s, i, "Unable to adjust balance. Please try again.")
		return
	}

	verb := "credited to"
	if sign < 0 {
		verb = "removed from"
	}
	message := fmt.Sprintf("**%s coins** %s <@%s>. New balance: **%s coins**.",
		common.FormatCoins(amount), verb, targetUser.ID, common.FormatCoins(newBalance))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.WithError(err).Error("Error responding to admin adjust command")
	}
}

func (b *Bot) handleAdminResetLevel(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var targetUser *discordgo.User
	for _, sub := range opt.Options {
		if sub.Name == "user" {
			targetUser = sub.UserValue(s)
		}
	}

	if targetUser == nil {
		count, err := b.adminService.ResetAllLevels(ctx, guildID)
		if err != nil {
			log.WithError(err).Error("Failed to reset all levels")
			common.RespondWithError(s, i, "Unable to reset levels. Please try again.")
			return
		}
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Reset levels for **%d** members.", count), false); err != nil {
			log.WithError(err).Error("Error responding to admin resetlevel command")
		}
		return
	}

	targetID, err := parseSnowflake(targetUser.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := b.adminService.ResetLevel(ctx, guildID, targetID); err != nil {
		log.WithError(err).Error("Failed to reset level")
		common.RespondWithError(s, i, "Unable to reset the member's level. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Reset level for <@%s>.", targetUser.ID), false); err != nil {
		log.WithError(err).Error("Error responding to admin resetlevel command")
	}
}

func (b *Bot) handleAdminSetRankRole(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var tierName string
	var role *discordgo.Role
	for _, sub := range opt.Options {
		switch sub.Name {
		case "tier":
			tierName = sub.StringValue()
		case "role":
			role = sub.RoleValue(s, i.GuildID)
		}
	}

	if role == nil {
		common.RespondWithError(s, i, "Invalid role.")
		return
	}

	roleID, err := parseSnowflake(role.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := b.settingsService.SetTierRole(ctx, guildID, models.TierName(tierName), roleID); err != nil {
		log.WithError(err).Error("Failed to set rank role")
		common.RespondWithError(s, i, "Unable to set the rank role. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("**%s** rank now maps to <@&%s>.", tierName, role.ID), false); err != nil {
		log.WithError(err).Error("Error responding to admin setrankrole command")
	}
}

func (b *Bot) handleAdminSetCommission(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var rate float64
	for _, sub := range opt.Options {
		if sub.Name == "rate" {
			rate = sub.FloatValue()
		}
	}

	if err := b.settingsService.SetCommissionRate(ctx, guildID, rate); err != nil {
		log.WithError(err).Error("Failed to set commission rate")
		common.RespondWithError(s, i, "Commission rate must be between 0 and 1.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Commission rate set to **%.0f%%**.", rate*100), false); err != nil {
		log.WithError(err).Error("Error responding to admin setcommission command")
	}
}

func (b *Bot) handleAdminFeatureItem(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
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

	if err := b.shopService.FeatureItem(ctx, guildID, itemID); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			common.RespondWithError(s, i, "That item does not exist.")
			return
		}
		log.WithError(err).Error("Failed to feature item")
		common.RespondWithError(s, i, "Unable to feature the item. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Item `#%d` is now featured.", itemID), false); err != nil {
		log.WithError(err).Error("Error responding to admin featureitem command")
	}
}

func (b *Bot) handleAdminRemoveItem(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
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

	if err := b.shopService.RemoveItem(ctx, guildID, itemID); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			common.RespondWithError(s, i, "That item does not exist.")
			return
		}
		log.WithError(err).Error("Failed to remove item")
		common.RespondWithError(s, i, "Unable to remove the item. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Item `#%d` removed.", itemID), false); err != nil {
		log.WithError(err).Error("Error responding to admin removeitem command")
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"guildbank/bot/common"
	"guildbank/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := b.accountService.GetAccount(ctx, guildID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to get account for balance command")
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	message := fmt.Sprintf("%s, your current balance: **%s coins**", displayName, common.FormatCoins(account.Balance))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.WithError(err).Error("Error responding to balance command")
	}
}

func (b *Bot) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, callerID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetID := callerID
	targetDiscordID := i.Member.User.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			user := opt.UserValue(s)
			if user != nil {
				targetDiscordID = user.ID
				if id, err := parseSnowflake(user.ID); err == nil {
					targetID = id
				}
			}
		}
	}

	account, err := b.accountService.GetAccount(ctx, guildID, targetID)
	if err != nil {
		log.WithError(err).Error("Failed to get account for profile command")
		common.RespondWithError(s, i, "Unable to retrieve profile. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, targetDiscordID)
	rank, _ := service.RankForLevel(account.Level)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Profile — %s", displayName),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d", account.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%s / %s", common.FormatCoins(account.XP), common.FormatCoins(service.XPRequired(account.Level))), Inline: true},
			{Name: "Rank", Value: string(rank), Inline: true},
			{Name: "Balance", Value: common.FormatCoins(account.Balance) + " coins", Inline: true},
			{Name: "Daily Streak", Value: fmt.Sprintf("%d days", account.DailyStreak), Inline: true},
			{Name: "Luck", Value: fmt.Sprintf("%.1fx", service.Luck(account.DailyStreak)), Inline: true},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.WithError(err).Error("Error responding to profile command")
	}
}

func (b *Bot) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	tier := b.memberTier(ctx, guildID, i.Member)
	result, err := b.streakService.ClaimDaily(ctx, guildID, userID, tier, timeNow())
	if err != nil {
		if errors.Is(err, service.ErrAlreadyClaimedToday) && result != nil {
			common.RespondWithError(s, i, fmt.Sprintf(
				"You already claimed today. Next claim in **%s**.",
				common.FormatDuration(result.NextClaimIn)))
			return
		}
		log.WithError(err).Error("Failed to claim daily reward")
		common.RespondWithError(s, i, "Unable to claim daily reward. Please try again.")
		return
	}

	message := fmt.Sprintf("🗓️ Daily claimed! **+%s coins** · streak **%d** days · balance **%s coins**",
		common.FormatCoins(result.Reward), result.Streak, common.FormatCoins(result.NewBalance))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.WithError(err).Error("Error responding to daily command")
	}
}

func (b *Bot) handleStreak(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := b.accountService.GetAccount(ctx, guildID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to get account for streak command")
		common.RespondWithError(s, i, "Unable to retrieve streak. Please try again.")
		return
	}

	message := fmt.Sprintf("🔥 Your daily streak is **%d days**.", account.DailyStreak)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: message},
	})
	if err != nil {
		log.WithError(err).Error("Error responding to streak command")
	}
}

func (b *Bot) handleLuck(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := b.accountService.GetAccount(ctx, guildID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to get account for luck command")
		common.RespondWithError(s, i, "Unable to retrieve luck. Please try again.")
		return
	}

	message := fmt.Sprintf("🍀 Your luck multiplier is **%.1fx** (streak: %d days).",
		service.Luck(account.DailyStreak), account.DailyStreak)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: message},
	})
	if err != nil {
		log.WithError(err).Error("Error responding to luck command")
	}
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	accounts, err := b.accountService.GetLeaderboard(ctx, guildID, 10)
	if err != nil {
		log.WithError(err).Error("Failed to get leaderboard")
		common.RespondWithError(s, i, "Unable to retrieve leaderboard. Please try again.")
		return
	}

	if len(accounts) == 0 {
		common.RespondWithError(s, i, "No accounts yet. Start chatting to earn!")
		return
	}

	var sb strings.Builder
	for n, account := range accounts {
		name := GetDisplayNameInt64(s, i.GuildID, account.UserID)
		fmt.Fprintf(&sb, "**%d.** %s — level %d (%s xp)\n",
			n+1, name, account.Level, common.FormatCoins(account.XP))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: sb.String(),
		Color:       0xFFD700,
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.WithError(err).Error("Error responding to leaderboard command")
	}
}

func (b *Bot) handlePay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, senderID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var amount int64
	var recipientUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipientUser = opt.UserValue(s)
		}
	}

	if recipientUser == nil {
		common.RespondWithError(s, i, "Invalid recipient.")
		return
	}
	if recipientUser.Bot {
		common.RespondWithError(s, i, "Bots cannot hold coins.")
		return
	}

	recipientID, err := parseSnowflake(recipientUser.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	tier := b.memberTier(ctx, guildID, i.Member)
	result, err := b.transferService.Transfer(ctx, guildID, senderID, recipientID, amount, tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			common.RespondWithError(s, i, "Amount must be positive.")
		case errors.Is(err, service.ErrSelfTransfer):
			common.RespondWithError(s, i, "You cannot pay yourself.")
		case errors.Is(err, service.ErrPayLimitExceeded):
			common.RespondWithError(s, i, fmt.Sprintf("That exceeds your rank's pay limit of **%s coins** per payment.", common.FormatCoins(tier.PayLimit)))
		case errors.Is(err, service.ErrInsufficientFunds):
			common.RespondWithError(s, i, "Insufficient balance for this payment.")
		default:
			log.WithError(err).Error("Failed to transfer coins")
			common.RespondWithError(s, i, "Unable to process payment. Please try again.")
		}
		return
	}

	message := common.FormatTransferResult(result.Amount, recipientUser.ID)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: message},
	})
	if err != nil {
		log.WithError(err).Error("Error responding to pay command")
	}
}

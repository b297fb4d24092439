package bot

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"guildbank/events"
	"guildbank/models"
	"guildbank/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	AnnounceChannelID string
	AdminDiscordIDs   []int64
}

type Bot struct {
	config          Config
	session         *discordgo.Session
	accountService  service.AccountService
	streakService   service.StreakService
	transferService service.TransferService
	shopService     service.ShopService
	adminService    service.AdminService
	streamService   service.StreamService
	settingsService service.GuildSettingsService
	eventBus        *events.Bus
	streams         *streamTracker
}

func New(config Config, accountService service.AccountService, streakService service.StreakService, transferService service.TransferService, shopService service.ShopService, adminService service.AdminService, streamService service.StreamService, settingsService service.GuildSettingsService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:          config,
		session:         dg,
		accountService:  accountService,
		streakService:   streakService,
		transferService: transferService,
		shopService:     shopService,
		adminService:    adminService,
		streamService:   streamService,
		settingsService: settingsService,
		eventBus:        eventBus,
		streams:         newStreamTracker(),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Gateway events that drive the economy
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleVoiceStateUpdate)
	dg.AddHandler(bot.handleGuildMemberRemove)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Role sync and announcements ride on committed level up events
	eventBus.Subscribe(events.EventTypeLevelUp, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.LevelUpEvent); ok {
			bot.onLevelUp(ctx, e)
		}
	})

	eventBus.Subscribe(events.EventTypeItemPurchased, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ItemPurchasedEvent); ok {
			bot.onItemPurchased(ctx, e)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// onLevelUp announces the level up and, when the gain crossed a rank
// threshold, grants the matching tier role. Granting is idempotent:
// Discord treats adding a role the member already has as a no-op.
func (b *Bot) onLevelUp(ctx context.Context, e events.LevelUpEvent) {
	guildID := strconv.FormatInt(e.GuildID, 10)
	userID := strconv.FormatInt(e.UserID, 10)

	if b.config.AnnounceChannelID != "" {
		msg := fmt.Sprintf("🎉 <@%s> reached level **%d**!", userID, e.NewLevel)
		if e.RankChanged {
			msg = fmt.Sprintf("🎉 <@%s> reached level **%d** and was promoted to **%s**!", userID, e.NewLevel, e.NewRank)
		}
		if _, err := b.session.ChannelMessageSend(b.config.AnnounceChannelID, msg); err != nil {
			log.WithError(err).Error("Failed to send level up announcement")
		}
	}

	if !e.RankChanged {
		return
	}

	roles, err := b.settingsService.GetTierRoles(ctx, e.GuildID)
	if err != nil {
		log.WithError(err).Error("Failed to load tier roles for rank grant")
		return
	}

	var roleID int64
	switch e.NewRank {
	case models.TierElite:
		roleID = roles.Elite
	case models.TierMaster:
		roleID = roles.Master
	case models.TierSupreme:
		roleID = roles.Supreme
	}
	if roleID == 0 {
		return
	}

	if err := b.session.GuildMemberRoleAdd(guildID, userID, strconv.FormatInt(roleID, 10)); err != nil {
		log.WithFields(log.Fields{
			"userID": e.UserID,
			"roleID": roleID,
		}).WithError(err).Error("Failed to grant rank role")
	}
}

// onItemPurchased delivers the product link to the buyer via DM.
func (b *Bot) onItemPurchased(ctx context.Context, e events.ItemPurchasedEvent) {
	buyerID := strconv.FormatInt(e.BuyerID, 10)

	channel, err := b.session.UserChannelCreate(buyerID)
	if err != nil {
		log.WithError(err).Error("Failed to open DM channel for purchase delivery")
		return
	}

	msg := fmt.Sprintf("📦 Thanks for buying **%s**! Here is your download: %s", e.ItemName, e.ProductLink)
	if _, err := b.session.ChannelMessageSend(channel.ID, msg); err != nil {
		log.WithFields(log.Fields{
			"buyerID": e.BuyerID,
			"itemID":  e.ItemID,
		}).WithError(err).Error("Failed to deliver purchase DM")
	}
}

// handleGuildMemberRemove drops the departing member's account and
// listings.
func (b *Bot) handleGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	ctx := context.Background()

	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}
	userID, err := strconv.ParseInt(m.User.ID, 10, 64)
	if err != nil {
		return
	}

	if err := b.accountService.DeleteAccount(ctx, guildID, userID); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Error("Failed to delete account on member departure")
	}
}

// isAdmin reports whether the invoking member may use admin commands.
func (b *Bot) isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	if id, err := strconv.ParseInt(i.Member.User.ID, 10, 64); err == nil {
		for _, adminID := range b.config.AdminDiscordIDs {
			if adminID == id {
				return true
			}
		}
	}
	return false
}

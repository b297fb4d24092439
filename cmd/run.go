package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"guildbank/bot"
	"guildbank/config"
	"guildbank/database"
	"guildbank/events"
	"guildbank/repository"
	"guildbank/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting guildbank bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Info("Initializing services...")
	accountService := service.NewAccountService(uowFactory)
	streakService := service.NewStreakService(uowFactory)
	transferService := service.NewTransferService(uowFactory)
	shopService := service.NewShopService(uowFactory)
	adminService := service.NewAdminService(uowFactory)
	streamService := service.NewStreamService(uowFactory)
	settingsService := service.NewGuildSettingsService(uowFactory)
	log.Info("Services initialized successfully")

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.DiscordGuildID,
		AnnounceChannelID: cfg.AnnounceChannelID,
		AdminDiscordIDs:   cfg.AdminDiscordIDs,
	}
	discordBot, err := bot.New(botConfig, accountService, streakService, transferService, shopService, adminService, streamService, settingsService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}

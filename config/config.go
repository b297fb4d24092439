package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Channel used for level up and rank announcements. Empty disables
	// announcements.
	AnnounceChannelID string

	// Discord IDs allowed to use admin commands in addition to members
	// with the Administrator permission.
	AdminDiscordIDs []int64

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AnnounceChannelID: os.Getenv("ANNOUNCE_CHANNEL_ID"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Parse admin Discord IDs
	if adminIDs := os.Getenv("ADMIN_DISCORD_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.AdminDiscordIDs = append(config.AdminDiscordIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// IsAdmin reports whether a Discord ID is on the configured admin list.
func (c *Config) IsAdmin(discordID int64) bool {
	for _, id := range c.AdminDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

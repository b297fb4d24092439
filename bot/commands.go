package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current coin balance",
		},
		{
			Name:        "profile",
			Description: "View level, xp, streak and balance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to look up (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "streak",
			Description: "Check your daily streak",
		},
		{
			Name:        "luck",
			Description: "Check your streak luck multiplier",
		},
		{
			Name:        "leaderboard",
			Description: "Show the top members by level",
		},
		{
			Name:        "pay",
			Description: "Pay coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount of coins to pay",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to pay",
					Required:    true,
				},
			},
		},
		{
			Name:        "shop",
			Description: "Browse and buy from the member marketplace",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "browse",
					Description: "Browse all listings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "new",
					Description: "Show the newest listings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "search",
					Description: "Search listings by name or application",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Text to search for",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "List an item for sale",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Item name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "price",
							Description: "Price in coins",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "link",
							Description: "Product download link",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "application",
							Description: "Application the item is for",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Listing category",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "screenshot",
							Description: "Screenshot link",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "buy",
					Description: "Buy a listed item",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Item ID to buy",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "bump",
					Description: "Bump your listing to the top (supreme rank only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Your item ID to bump",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "admin",
			Description: "Economy administration",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "give",
					Description: "Credit coins to a member",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Member to credit",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount of coins",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "take",
					Description: "Remove coins from a member",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Member to debit",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount of coins",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "resetlevel",
					Description: "Reset a member's level, xp and streak",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Member to reset (omit to reset everyone)",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setrankrole",
					Description: "Map a rank tier to a guild role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "tier",
							Description: "Rank tier",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "elite", Value: "elite"},
								{Name: "master", Value: "master"},
								{Name: "supreme", Value: "supreme"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role that confers the tier",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setcommission",
					Description: "Set the marketplace commission rate",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "rate",
							Description: "Seller share of the original price (0 to 1)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "featureitem",
					Description: "Feature a marketplace listing",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Item ID to feature",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removeitem",
					Description: "Remove a marketplace listing",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "id",
							Description: "Item ID to remove",
							Required:    true,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "profile":
		b.handleProfile(s, i)
	case "daily":
		b.handleDaily(s, i)
	case "streak":
		b.handleStreak(s, i)
	case "luck":
		b.handleLuck(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "pay":
		b.handlePay(s, i)
	case "shop":
		b.handleShopCommand(s, i)
	case "admin":
		b.handleAdminCommand(s, i)
	}
}

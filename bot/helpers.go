package bot

import (
	"context"
	"strconv"
	"time"

	"guildbank/models"
	"guildbank/service"

	"github.com/bwmarrin/discordgo"
)

// timeNow is swappable in tests.
var timeNow = time.Now

// GetDisplayName returns the server-specific display name for a user.
// Falls back to username if nickname is not set or if there's an error.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, strconv.FormatInt(userID, 10))
}

// parseSnowflake converts a Discord string ID to int64.
func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// memberRoleIDs converts a member's role list to int64 ids, skipping
// anything unparsable.
func memberRoleIDs(member *discordgo.Member) []int64 {
	if member == nil {
		return nil
	}
	ids := make([]int64, 0, len(member.Roles))
	for _, r := range member.Roles {
		if id, err := strconv.ParseInt(r, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// memberTier resolves a member's perk tier from their guild roles.
// Errors degrade to the default tier rather than blocking the command.
func (b *Bot) memberTier(ctx context.Context, guildID int64, member *discordgo.Member) models.PerkTier {
	roles, err := b.settingsService.GetTierRoles(ctx, guildID)
	if err != nil {
		return service.TierByName(models.TierDefault)
	}
	return service.ResolveTier(roles, memberRoleIDs(member))
}

// interactionIDs extracts the guild and caller ids from an interaction.
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	guildID, err = parseSnowflake(i.GuildID)
	if err != nil {
		return 0, 0, err
	}
	userID, err = parseSnowflake(i.Member.User.ID)
	if err != nil {
		return 0, 0, err
	}
	return guildID, userID, nil
}

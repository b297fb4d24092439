package bot

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bwmarrin/discordgo"
)

// handleMessageCreate feeds every guild message into the passive income
// path. Bots never earn.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := parseSnowflake(m.GuildID)
	if err != nil {
		return
	}
	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		return
	}

	ctx := context.Background()
	tier := b.memberTier(ctx, guildID, m.Member)

	if _, err := b.accountService.RecordPassiveActivity(ctx, guildID, userID, tier, timeNow()); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Error("Failed to record passive activity")
	}
}

// streamTracker remembers when each member started screen sharing so
// the reward can be computed when they stop. State is in-memory only; a
// restart forfeits in-flight sessions.
type streamTracker struct {
	mu       sync.Mutex
	sessions map[string]time.Time
}

func newStreamTracker() *streamTracker {
	return &streamTracker{
		sessions: make(map[string]time.Time),
	}
}

func (t *streamTracker) start(key string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, active := t.sessions[key]; !active {
		t.sessions[key] = at
	}
}

func (t *streamTracker) stop(key string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	started, active := t.sessions[key]
	if active {
		delete(t.sessions, key)
	}
	return started, active
}

// handleVoiceStateUpdate starts a stream session when a member begins
// screen sharing and settles the reward when they stop or disconnect.
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID == "" || v.GuildID == "" {
		return
	}

	key := v.GuildID + ":" + v.UserID
	streaming := v.SelfStream && v.ChannelID != ""

	if streaming {
		b.streams.start(key, timeNow())
		return
	}

	started, active := b.streams.stop(key)
	if !active {
		return
	}

	guildID, err := parseSnowflake(v.GuildID)
	if err != nil {
		return
	}
	userID, err := parseSnowflake(v.UserID)
	if err != nil {
		return
	}

	ctx := context.Background()
	reward, err := b.streamService.RecordStreamSession(ctx, guildID, userID, started, timeNow())
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Error("Failed to record stream session")
		return
	}

	if reward.Minutes > 0 {
		log.WithFields(log.Fields{
			"userID":  userID,
			"minutes": reward.Minutes,
			"coins":   reward.Coins,
			"xp":      reward.XP,
		}).Info("Stream session rewarded")
	}
}

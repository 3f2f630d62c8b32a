package collector

import (
	"sort"
	"sync"
	"time"

	"github.com/wardenbot/warden/internal/model"
)

const placeholderUsername = "unknown"

// Collector holds the ephemeral per-guild and per-user counters accumulated
// between flushes. Record calls mutate only in-memory state and never fail;
// Drain* snapshots and clears atomically. A single mutex guards everything so
// a drain can never observe a half-applied ingest.
type Collector struct {
	mu     sync.Mutex
	guilds map[string]*guildCounters
	users  map[model.UserKey]*userCounters

	now func() time.Time
}

type guildCounters struct {
	messagesTotal    int
	messagesEdited   int
	messagesDeleted  int
	messagesByHumans int
	messagesByBots   int

	voiceJoins   int
	voiceMinutes int
	voiceUsers   map[string]struct{}

	joins  int
	leaves int

	modActions map[string]int
	modTotal   int

	rolesAdded   int
	rolesRemoved int

	commandUses map[string]int
	emojiUses   map[string]int

	channelMessages map[string]int
	hourMessages    [24]int
	activeUsers     map[string]struct{}
}

type userCounters struct {
	username string

	messagesSent    int
	messagesEdited  int
	messagesDeleted int
	characterCount  int
	wordCount       int

	voiceJoins    int
	voiceMinutes  int
	voiceMuted    int
	voiceDeafened int

	reactionsGiven    int
	reactionsReceived int

	mentionsUsers    int
	mentionsRoles    int
	mentionsEveryone int

	channels map[string]int

	firstActivity time.Time
	lastActivity  time.Time
}

func New() *Collector {
	return &Collector{
		guilds: make(map[string]*guildCounters),
		users:  make(map[model.UserKey]*userCounters),
		now:    time.Now,
	}
}

func (c *Collector) guild(guildID string) *guildCounters {
	g, ok := c.guilds[guildID]
	if !ok {
		g = &guildCounters{
			voiceUsers:      make(map[string]struct{}),
			modActions:      make(map[string]int),
			commandUses:     make(map[string]int),
			emojiUses:       make(map[string]int),
			channelMessages: make(map[string]int),
			activeUsers:     make(map[string]struct{}),
		}
		c.guilds[guildID] = g
	}
	return g
}

func (c *Collector) user(guildID, userID, username string) *userCounters {
	key := model.UserKey{GuildID: guildID, UserID: userID}
	u, ok := c.users[key]
	if !ok {
		u = &userCounters{
			username: placeholderUsername,
			channels: make(map[string]int),
		}
		c.users[key] = u
	}
	if username != "" {
		u.username = username
	}
	return u
}

func (u *userCounters) touch(now time.Time) {
	if u.firstActivity.IsZero() {
		u.firstActivity = now
	}
	u.lastActivity = now
}

// RecordMessage folds one human-authored message into the guild and user
// counters. Bot-authored messages must go through RecordBotMessage instead.
func (c *Collector) RecordMessage(guildID, userID, username, channelID string, contentLength, wordCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	g := c.guild(guildID)
	g.messagesTotal++
	g.messagesByHumans++
	g.channelMessages[channelID]++
	g.hourMessages[now.Hour()]++
	g.activeUsers[userID] = struct{}{}

	u := c.user(guildID, userID, username)
	u.messagesSent++
	u.characterCount += contentLength
	u.wordCount += wordCount
	u.channels[channelID]++
	u.touch(now)
}

// RecordBotMessage counts an automated message toward the guild totals only.
func (c *Collector) RecordBotMessage(guildID, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.guild(guildID)
	g.messagesTotal++
	g.messagesByBots++
	g.channelMessages[channelID]++
	g.hourMessages[c.now().Hour()]++
}

func (c *Collector) RecordMessageEdit(guildID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.guild(guildID).messagesEdited++
	u := c.user(guildID, userID, "")
	u.messagesEdited++
	u.touch(c.now())
}

func (c *Collector) RecordMessageDelete(guildID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.guild(guildID).messagesDeleted++
	c.user(guildID, userID, "").messagesDeleted++
}

// RecordVoiceSession folds one completed voice session into the counters.
// Called once per session end, not per tick.
func (c *Collector) RecordVoiceSession(guildID, userID, username string, minutes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.guild(guildID)
	g.voiceJoins++
	g.voiceMinutes += minutes
	g.voiceUsers[userID] = struct{}{}

	u := c.user(guildID, userID, username)
	u.voiceJoins++
	u.voiceMinutes += minutes
	u.touch(c.now())
}

func (c *Collector) RecordVoiceMute(guildID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user(guildID, userID, "").voiceMuted++
}

func (c *Collector) RecordVoiceDeafen(guildID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user(guildID, userID, "").voiceDeafened++
}

// RecordMemberChange counts a join or leave. Unknown actions are ignored.
func (c *Collector) RecordMemberChange(guildID, action string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.guild(guildID)
	switch action {
	case model.MemberActionJoin:
		g.joins++
	case model.MemberActionLeave:
		g.leaves++
	}
}

func (c *Collector) RecordReaction(guildID, giverID, receiverID, emoji string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if emoji != "" {
		c.guild(guildID).emojiUses[emoji]++
	}
	now := c.now()
	giver := c.user(guildID, giverID, "")
	giver.reactionsGiven++
	giver.touch(now)
	if receiverID != "" {
		c.user(guildID, receiverID, "").reactionsReceived++
	}
}

func (c *Collector) RecordMentions(guildID, userID string, users, roles int, everyone bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u := c.user(guildID, userID, "")
	u.mentionsUsers += users
	u.mentionsRoles += roles
	if everyone {
		u.mentionsEveryone++
	}
}

func (c *Collector) RecordModerationAction(guildID, action string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.guild(guildID)
	g.modActions[action]++
	g.modTotal++
}

func (c *Collector) RecordCommandUse(guildID, command string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.guild(guildID)
	g.commandUses[command]++
}

func (c *Collector) RecordRoleChange(guildID string, added bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.guild(guildID)
	if added {
		g.rolesAdded++
	} else {
		g.rolesRemoved++
	}
}

// DrainGuildCounters returns the current guild-level snapshot and clears it.
// The returned deltas include the derived ranked lists and peak hour computed
// from this accumulation window.
func (c *Collector) DrainGuildCounters() map[string]*model.GuildDelta {
	c.mu.Lock()
	drained := c.guilds
	c.guilds = make(map[string]*guildCounters)
	c.mu.Unlock()

	out := make(map[string]*model.GuildDelta, len(drained))
	for guildID, g := range drained {
		out[guildID] = g.delta()
	}
	return out
}

// DrainUserCounters returns the current (guild, user) snapshot and clears it.
func (c *Collector) DrainUserCounters() map[model.UserKey]*model.UserDelta {
	c.mu.Lock()
	drained := c.users
	c.users = make(map[model.UserKey]*userCounters)
	c.mu.Unlock()

	out := make(map[model.UserKey]*model.UserDelta, len(drained))
	for key, u := range drained {
		out[key] = u.delta()
	}
	return out
}

func (g *guildCounters) delta() *model.GuildDelta {
	d := &model.GuildDelta{
		MessagesTotal:    g.messagesTotal,
		MessagesEdited:   g.messagesEdited,
		MessagesDeleted:  g.messagesDeleted,
		MessagesByHumans: g.messagesByHumans,
		MessagesByBots:   g.messagesByBots,
		VoiceJoins:       g.voiceJoins,
		VoiceMinutes:     g.voiceMinutes,
		VoiceUniqueUsers: len(g.voiceUsers),
		MemberJoins:      g.joins,
		MemberLeaves:     g.leaves,
		ModActions:       g.modActions,
		ModTotal:         g.modTotal,
		RolesAdded:       g.rolesAdded,
		RolesRemoved:     g.rolesRemoved,
		ActiveUsers:      len(g.activeUsers),
	}

	for command, count := range g.commandUses {
		d.CommandsUsed += count
		d.CommandUsage = append(d.CommandUsage, model.CommandCount{Command: command, Count: count})
	}
	sort.Slice(d.CommandUsage, func(i, j int) bool {
		if d.CommandUsage[i].Count != d.CommandUsage[j].Count {
			return d.CommandUsage[i].Count > d.CommandUsage[j].Count
		}
		return d.CommandUsage[i].Command < d.CommandUsage[j].Command
	})

	for channelID, count := range g.channelMessages {
		d.TopChannels = append(d.TopChannels, model.TopChannel{ChannelID: channelID, MessageCount: count})
	}
	sort.Slice(d.TopChannels, func(i, j int) bool {
		if d.TopChannels[i].MessageCount != d.TopChannels[j].MessageCount {
			return d.TopChannels[i].MessageCount > d.TopChannels[j].MessageCount
		}
		return d.TopChannels[i].ChannelID < d.TopChannels[j].ChannelID
	})
	if len(d.TopChannels) > 10 {
		d.TopChannels = d.TopChannels[:10]
	}

	for emoji, count := range g.emojiUses {
		d.TopEmojis = append(d.TopEmojis, model.EmojiCount{Emoji: emoji, Count: count})
	}
	sort.Slice(d.TopEmojis, func(i, j int) bool {
		if d.TopEmojis[i].Count != d.TopEmojis[j].Count {
			return d.TopEmojis[i].Count > d.TopEmojis[j].Count
		}
		return d.TopEmojis[i].Emoji < d.TopEmojis[j].Emoji
	})
	if len(d.TopEmojis) > 10 {
		d.TopEmojis = d.TopEmojis[:10]
	}

	for hour, count := range g.hourMessages {
		if count > d.PeakHourMessages {
			d.PeakHour = hour
			d.PeakHourMessages = count
		}
	}

	if d.ActiveUsers > 0 {
		d.AvgMessagesPerUser = float64(d.MessagesTotal) / float64(d.ActiveUsers)
	}

	return d
}

func (u *userCounters) delta() *model.UserDelta {
	d := &model.UserDelta{
		Username:          u.username,
		MessagesSent:      u.messagesSent,
		MessagesEdited:    u.messagesEdited,
		MessagesDeleted:   u.messagesDeleted,
		CharacterCount:    u.characterCount,
		WordCount:         u.wordCount,
		VoiceJoins:        u.voiceJoins,
		VoiceMinutes:      u.voiceMinutes,
		VoiceMuted:        u.voiceMuted,
		VoiceDeafened:     u.voiceDeafened,
		ReactionsGiven:    u.reactionsGiven,
		ReactionsReceived: u.reactionsReceived,
		MentionsUsers:     u.mentionsUsers,
		MentionsRoles:     u.mentionsRoles,
		MentionsEveryone:  u.mentionsEveryone,
		FirstActivity:     u.firstActivity,
		LastActivity:      u.lastActivity,
	}

	for channelID, count := range u.channels {
		d.ChannelsActive = append(d.ChannelsActive, model.ChannelActivity{ChannelID: channelID, MessageCount: count})
	}
	sort.Slice(d.ChannelsActive, func(i, j int) bool {
		if d.ChannelsActive[i].MessageCount != d.ChannelsActive[j].MessageCount {
			return d.ChannelsActive[i].MessageCount > d.ChannelsActive[j].MessageCount
		}
		return d.ChannelsActive[i].ChannelID < d.ChannelsActive[j].ChannelID
	})

	return d
}

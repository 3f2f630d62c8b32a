package model

import (
	"math"
	"time"
)

// TopChannel is one entry of a rollup's ranked channel list.
type TopChannel struct {
	ChannelID    string `json:"channel_id"`
	ChannelName  string `json:"channel_name,omitempty"`
	MessageCount int    `json:"message_count"`
}

// TopUser is one entry of a rollup's ranked user list.
type TopUser struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	MessageCount int    `json:"message_count"`
	VoiceMinutes int    `json:"voice_minutes"`
}

type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// ChannelActivity is a per-channel message count inside a user's daily record.
type ChannelActivity struct {
	ChannelID    string `json:"channel_id"`
	MessageCount int    `json:"message_count"`
}

// MemberComposition is a point-in-time member-count split for a guild.
type MemberComposition struct {
	Total  int `json:"total"`
	Online int `json:"online"`
	Bots   int `json:"bots"`
	Humans int `json:"humans"`
}

// GuildRollup is the persisted daily aggregate for a guild. At most one row
// exists per (guild_id, date); counter columns grow additively across hourly
// flushes, snapshot columns (members_*) are replaced by the midnight job, and
// the jsonb ranked lists hold the latest drained window (last-write-wins).
type GuildRollup struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	GuildID string    `gorm:"size:32;not null;uniqueIndex:idx_rollup_guild_day,priority:1" json:"guild_id"`
	Date    time.Time `gorm:"not null;uniqueIndex:idx_rollup_guild_day,priority:2;index" json:"date"`

	// Member-count snapshot (replaced, never incremented).
	MembersTotal  int `gorm:"default:0" json:"members_total"`
	MembersOnline int `gorm:"default:0" json:"members_online"`
	MembersBots   int `gorm:"default:0" json:"members_bots"`
	MembersHumans int `gorm:"default:0" json:"members_humans"`

	// Message counters.
	MessagesTotal    int `gorm:"default:0" json:"messages_total"`
	MessagesEdited   int `gorm:"default:0" json:"messages_edited"`
	MessagesDeleted  int `gorm:"default:0" json:"messages_deleted"`
	MessagesByHumans int `gorm:"default:0" json:"messages_by_humans"`
	MessagesByBots   int `gorm:"default:0" json:"messages_by_bots"`

	// Voice counters.
	VoiceJoins       int `gorm:"default:0" json:"voice_joins"`
	VoiceMinutes     int `gorm:"default:0" json:"voice_minutes"`
	VoiceUniqueUsers int `gorm:"default:0" json:"voice_unique_users"`

	// Member deltas.
	MemberJoins  int `gorm:"default:0" json:"member_joins"`
	MemberLeaves int `gorm:"default:0" json:"member_leaves"`
	MemberNet    int `gorm:"default:0" json:"member_net"`

	// Moderation action counters.
	ModWarns    int `gorm:"default:0" json:"mod_warns"`
	ModMutes    int `gorm:"default:0" json:"mod_mutes"`
	ModKicks    int `gorm:"default:0" json:"mod_kicks"`
	ModBans     int `gorm:"default:0" json:"mod_bans"`
	ModTimeouts int `gorm:"default:0" json:"mod_timeouts"`
	ModTotal    int `gorm:"default:0" json:"mod_total"`

	// Role-change deltas.
	RolesAdded   int `gorm:"default:0" json:"roles_added"`
	RolesRemoved int `gorm:"default:0" json:"roles_removed"`

	// Command usage.
	CommandsUsed int            `gorm:"default:0" json:"commands_used"`
	CommandUsage []CommandCount `gorm:"type:jsonb;serializer:json" json:"command_usage"`

	// Ranked lists (latest drained window, last-write-wins).
	TopChannels []TopChannel `gorm:"type:jsonb;serializer:json" json:"top_channels"`
	TopUsers    []TopUser    `gorm:"type:jsonb;serializer:json" json:"top_users"`
	TopEmojis   []EmojiCount `gorm:"type:jsonb;serializer:json" json:"top_emojis"`

	// Peak activity.
	PeakHour         int `gorm:"default:0" json:"peak_hour"`
	PeakHourMessages int `gorm:"default:0" json:"peak_hour_messages"`

	// Engagement metrics (derived at flush time).
	ActiveUsers        int     `gorm:"default:0" json:"active_users"`
	EngagementRate     float64 `gorm:"default:0" json:"engagement_rate"`
	AvgMessagesPerUser float64 `gorm:"default:0" json:"avg_messages_per_user"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserActivity is the persisted daily activity record for one member of one
// guild. One row per (guild_id, user_id, date), merged additively per flush.
type UserActivity struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GuildID  string    `gorm:"size:32;not null;uniqueIndex:idx_activity_guild_user_day,priority:1" json:"guild_id"`
	UserID   string    `gorm:"size:32;not null;uniqueIndex:idx_activity_guild_user_day,priority:2" json:"user_id"`
	Date     time.Time `gorm:"not null;uniqueIndex:idx_activity_guild_user_day,priority:3;index" json:"date"`
	Username string    `gorm:"size:100" json:"username"`

	MessagesSent    int `gorm:"default:0" json:"messages_sent"`
	MessagesEdited  int `gorm:"default:0" json:"messages_edited"`
	MessagesDeleted int `gorm:"default:0" json:"messages_deleted"`
	CharacterCount  int `gorm:"default:0" json:"character_count"`
	WordCount       int `gorm:"default:0" json:"word_count"`

	VoiceJoins    int `gorm:"default:0" json:"voice_joins"`
	VoiceMinutes  int `gorm:"default:0" json:"voice_minutes"`
	VoiceMuted    int `gorm:"default:0" json:"voice_muted"`
	VoiceDeafened int `gorm:"default:0" json:"voice_deafened"`

	ReactionsGiven    int `gorm:"default:0" json:"reactions_given"`
	ReactionsReceived int `gorm:"default:0" json:"reactions_received"`

	MentionsUsers    int `gorm:"default:0" json:"mentions_users"`
	MentionsRoles    int `gorm:"default:0" json:"mentions_roles"`
	MentionsEveryone int `gorm:"default:0" json:"mentions_everyone"`

	// Per-channel breakdown (latest drained window, last-write-wins).
	ChannelsActive []ChannelActivity `gorm:"type:jsonb;serializer:json" json:"channels_active"`

	EngagementScore float64 `gorm:"default:0" json:"engagement_score"`

	FirstActivity *time.Time `json:"first_activity,omitempty"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EngagementScore is the fixed activity scoring convention: messages are worth
// 2 points capped at 100, voice minutes 0.5 capped at 100, channel diversity
// 10 capped at 50, all divided by 2.5.
func EngagementScore(messagesSent, voiceMinutes, distinctChannels int) float64 {
	messageScore := math.Min(float64(messagesSent)*2, 100)
	voiceScore := math.Min(float64(voiceMinutes)*0.5, 100)
	channelDiversity := math.Min(float64(distinctChannels)*10, 50)

	return (messageScore + voiceScore + channelDiversity) / 2.5
}

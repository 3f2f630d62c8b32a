package model

import "time"

// UserKey identifies one member's accumulator entry.
type UserKey struct {
	GuildID string
	UserID  string
}

// GuildDelta is a drained guild-level accumulator snapshot: the counters
// collected since the previous flush. Counter fields merge additively into the
// stored rollup; the derived fields (ranked lists, engagement, peak hour)
// replace what is stored.
type GuildDelta struct {
	MessagesTotal    int
	MessagesEdited   int
	MessagesDeleted  int
	MessagesByHumans int
	MessagesByBots   int

	VoiceJoins       int
	VoiceMinutes     int
	VoiceUniqueUsers int

	MemberJoins  int
	MemberLeaves int

	ModActions map[string]int
	ModTotal   int

	RolesAdded   int
	RolesRemoved int

	CommandsUsed int
	CommandUsage []CommandCount

	TopChannels []TopChannel
	TopUsers    []TopUser
	TopEmojis   []EmojiCount

	PeakHour         int
	PeakHourMessages int

	ActiveUsers        int
	EngagementRate     float64
	AvgMessagesPerUser float64
}

// UserDelta is a drained (guild, user) accumulator snapshot.
type UserDelta struct {
	Username string

	MessagesSent    int
	MessagesEdited  int
	MessagesDeleted int
	CharacterCount  int
	WordCount       int

	VoiceJoins    int
	VoiceMinutes  int
	VoiceMuted    int
	VoiceDeafened int

	ReactionsGiven    int
	ReactionsReceived int

	MentionsUsers    int
	MentionsRoles    int
	MentionsEveryone int

	ChannelsActive []ChannelActivity

	FirstActivity time.Time
	LastActivity  time.Time
}

// RealtimeCounters are the last-24h live counts read straight from the
// activity logs, bypassing the daily rollups.
type RealtimeCounters struct {
	Messages          int64 `json:"messages"`
	Joins             int64 `json:"joins"`
	Leaves            int64 `json:"leaves"`
	ActiveVoice       int64 `json:"active_voice"`
	ModerationActions int64 `json:"moderation_actions"`
}

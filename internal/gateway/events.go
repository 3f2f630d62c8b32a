package gateway

// Events posted by the bot process. Each mirrors one Discord gateway event,
// already reduced to the fields the analytics pipeline needs; message content
// itself never leaves the bot.

type MessageCreateEvent struct {
	GuildID       string `json:"guild_id" binding:"required"`
	MessageID     string `json:"message_id" binding:"required"`
	ChannelID     string `json:"channel_id" binding:"required"`
	ChannelName   string `json:"channel_name"`
	AuthorID      string `json:"author_id" binding:"required"`
	AuthorTag     string `json:"author_tag"`
	Bot           bool   `json:"bot"`
	ContentLength int    `json:"content_length" binding:"omitempty,min=0"`
	WordCount     int    `json:"word_count" binding:"omitempty,min=0"`

	MentionUsers    int  `json:"mention_users"`
	MentionRoles    int  `json:"mention_roles"`
	MentionEveryone bool `json:"mention_everyone"`
}

type MessageUpdateEvent struct {
	GuildID     string `json:"guild_id" binding:"required"`
	MessageID   string `json:"message_id" binding:"required"`
	ChannelID   string `json:"channel_id" binding:"required"`
	ChannelName string `json:"channel_name"`
	AuthorID    string `json:"author_id" binding:"required"`
	AuthorTag   string `json:"author_tag"`
	Bot         bool   `json:"bot"`
}

type MessageDeleteEvent struct {
	GuildID     string `json:"guild_id" binding:"required"`
	MessageID   string `json:"message_id" binding:"required"`
	ChannelID   string `json:"channel_id" binding:"required"`
	ChannelName string `json:"channel_name"`
	AuthorID    string `json:"author_id"`
	AuthorTag   string `json:"author_tag"`
}

// VoiceStateEvent carries one raw voice-state update. The dispatcher derives
// the join/leave/move action from the old and new channel IDs.
type VoiceStateEvent struct {
	GuildID      string `json:"guild_id" binding:"required"`
	UserID       string `json:"user_id" binding:"required"`
	UserTag      string `json:"user_tag"`
	OldChannelID string `json:"old_channel_id"`
	NewChannelID string `json:"new_channel_id"`
	SelfMute     bool   `json:"self_mute"`
	SelfDeaf     bool   `json:"self_deaf"`
}

type MemberEvent struct {
	GuildID     string `json:"guild_id" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
	UserTag     string `json:"user_tag"`
	Action      string `json:"action" binding:"required,oneof=join leave"`
	MemberCount int    `json:"member_count"`
}

type ReactionEvent struct {
	GuildID         string `json:"guild_id" binding:"required"`
	UserID          string `json:"user_id" binding:"required"`
	MessageAuthorID string `json:"message_author_id"`
	Emoji           string `json:"emoji"`
}

type CommandEvent struct {
	GuildID string `json:"guild_id" binding:"required"`
	UserID  string `json:"user_id"`
	Command string `json:"command" binding:"required"`
}

type RoleEvent struct {
	GuildID  string `json:"guild_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	RoleID   string `json:"role_id" binding:"required"`
	RoleName string `json:"role_name"`
	Added    bool   `json:"added"`
}

// DirectoryUpdate is the bot's periodic report of a guild's member
// composition. The flusher reads the latest report for snapshots and
// engagement rates.
type DirectoryUpdate struct {
	GuildID string `json:"guild_id" binding:"required"`
	Total   int    `json:"total" binding:"min=0"`
	Online  int    `json:"online" binding:"min=0"`
	Bots    int    `json:"bots" binding:"min=0"`
	Humans  int    `json:"humans" binding:"min=0"`
}

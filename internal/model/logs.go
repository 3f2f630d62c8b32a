package model

import "time"

// Member log actions.
const (
	MemberActionJoin  = "join"
	MemberActionLeave = "leave"
)

// Message log actions.
const (
	MessageActionCreated = "created"
	MessageActionEdited  = "edited"
	MessageActionDeleted = "deleted"
)

// Voice log actions.
const (
	VoiceActionJoin   = "join"
	VoiceActionLeave  = "leave"
	VoiceActionMove   = "move"
	VoiceActionMute   = "mute"
	VoiceActionDeafen = "deafen"
)

// MemberLog records a single join/leave event; the retention and realtime
// queries read these rows directly.
type MemberLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GuildID     string    `gorm:"size:32;not null;index:idx_memberlog_guild_ts,priority:1" json:"guild_id"`
	UserID      string    `gorm:"size:32;not null;index" json:"user_id"`
	UserTag     string    `gorm:"size:100" json:"user_tag"`
	Action      string    `gorm:"size:20;not null" json:"action"`
	MemberCount int       `gorm:"default:0" json:"member_count"`
	Timestamp   time.Time `gorm:"not null;index:idx_memberlog_guild_ts,priority:2" json:"timestamp"`
}

// MessageLog records one message event (created, edited or deleted). Channel
// activity and the hourly histogram aggregate over these rows.
type MessageLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GuildID     string    `gorm:"size:32;not null;index:idx_messagelog_guild_ts,priority:1" json:"guild_id"`
	MessageID   string    `gorm:"size:32;not null" json:"message_id"`
	ChannelID   string    `gorm:"size:32;not null;index" json:"channel_id"`
	ChannelName string    `gorm:"size:100" json:"channel_name"`
	AuthorID    string    `gorm:"size:32;not null;index" json:"author_id"`
	AuthorTag   string    `gorm:"size:100" json:"author_tag"`
	Action      string    `gorm:"size:20;not null" json:"action"`
	Timestamp   time.Time `gorm:"not null;index:idx_messagelog_guild_ts,priority:2" json:"timestamp"`
}

// VoiceLog records one voice-state transition. Duration is the completed
// session length in seconds, set only on leave events.
type VoiceLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GuildID      string    `gorm:"size:32;not null;index:idx_voicelog_guild_ts,priority:1" json:"guild_id"`
	UserID       string    `gorm:"size:32;not null;index" json:"user_id"`
	UserTag      string    `gorm:"size:100" json:"user_tag"`
	Action       string    `gorm:"size:20;not null" json:"action"`
	OldChannelID string    `gorm:"size:32" json:"old_channel_id"`
	NewChannelID string    `gorm:"size:32" json:"new_channel_id"`
	Duration     int       `gorm:"default:0" json:"duration"`
	Timestamp    time.Time `gorm:"not null;index:idx_voicelog_guild_ts,priority:2" json:"timestamp"`
}

// RoleLog records a role grant or removal on a member.
type RoleLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GuildID   string    `gorm:"size:32;not null;index:idx_rolelog_guild_ts,priority:1" json:"guild_id"`
	UserID    string    `gorm:"size:32;not null" json:"user_id"`
	RoleID    string    `gorm:"size:32;not null" json:"role_id"`
	RoleName  string    `gorm:"size:100" json:"role_name"`
	Added     bool      `gorm:"not null" json:"added"`
	Timestamp time.Time `gorm:"not null;index:idx_rolelog_guild_ts,priority:2" json:"timestamp"`
}

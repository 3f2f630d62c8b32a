package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Moderation actions. Auto-* actions are issued by the auto-moderation
// filters rather than a human moderator.
const (
	ModActionWarn    = "warn"
	ModActionMute    = "mute"
	ModActionUnmute  = "unmute"
	ModActionKick    = "kick"
	ModActionBan     = "ban"
	ModActionTimeout = "timeout"

	ModActionAutoSpam     = "auto_spam"
	ModActionAutoLink     = "auto_link"
	ModActionAutoMassPing = "auto_mass_ping"
	ModActionAutoWord     = "auto_word_filter"
)

// ModerationCase is an append-only audit record. CaseID is monotonically
// increasing within a guild; rows are never mutated after creation apart from
// the Active flag.
type ModerationCase struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GuildID     string    `gorm:"size:32;not null;uniqueIndex:idx_case_guild_seq,priority:1" json:"guild_id"`
	CaseID      int       `gorm:"not null;uniqueIndex:idx_case_guild_seq,priority:2" json:"case_id"`
	UserID      string    `gorm:"size:32;not null;index" json:"user_id"`
	ModeratorID string    `gorm:"size:32;not null;index" json:"moderator_id"`
	Action      string    `gorm:"size:30;not null" json:"action"`
	Reason      string    `gorm:"size:512;default:'No reason provided'" json:"reason"`
	Duration    *string   `gorm:"size:32" json:"duration,omitempty"`
	Active      bool      `gorm:"default:true" json:"active"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *ModerationCase) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

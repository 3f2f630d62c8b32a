package dto

import "time"

// CreateCaseRequest is posted by the bot process whenever a moderator or an
// automod rule takes action against a member.
type CreateCaseRequest struct {
	GuildID     string  `json:"guild_id" binding:"required"`
	UserID      string  `json:"user_id" binding:"required"`
	ModeratorID string  `json:"moderator_id" binding:"required"`
	Action      string  `json:"action" binding:"required,oneof=warn mute unmute kick ban timeout auto_spam auto_link auto_mass_ping auto_word_filter"`
	Reason      string  `json:"reason"`
	Duration    *string `json:"duration"`
}

type CaseListQuery struct {
	UserID string `form:"user_id"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type CaseResponse struct {
	ID          string    `json:"id"`
	CaseID      int       `json:"case_id"`
	GuildID     string    `json:"guild_id"`
	UserID      string    `json:"user_id"`
	ModeratorID string    `json:"moderator_id"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason"`
	Duration    *string   `json:"duration,omitempty"`
	Active      bool      `json:"active"`
	Timestamp   time.Time `json:"timestamp"`
}

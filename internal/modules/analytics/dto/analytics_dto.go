package dto

import (
	"time"

	"github.com/wardenbot/warden/internal/model"
)

// LeaderboardQuery binds /leaderboard query params.
type LeaderboardQuery struct {
	Type  string `form:"type" binding:"omitempty,oneof=messages voice engagement"`
	Days  int    `form:"days" binding:"omitempty,min=1,max=365"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// RangeQuery binds the shared ?days=N window param.
type RangeQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

type LeaderboardEntry struct {
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	TotalMessages int     `json:"total_messages"`
	TotalWords    int     `json:"total_words"`
	TotalMinutes  int     `json:"total_minutes"`
	TotalSessions int     `json:"total_sessions"`
	AvgEngagement float64 `json:"avg_engagement"`
}

type Leaderboard struct {
	Type    string             `json:"type"`
	Days    int                `json:"days"`
	Entries []LeaderboardEntry `json:"leaderboard"`
}

type RetentionStats struct {
	NewMembers    int    `json:"new_members"`
	Retained      int    `json:"retained"`
	Left          int    `json:"left"`
	RetentionRate string `json:"retention_rate"`
}

type PeriodTotals struct {
	Messages          int `json:"messages"`
	Joins             int `json:"joins"`
	Leaves            int `json:"leaves"`
	ModerationActions int `json:"moderation_actions"`
	VoiceMinutes      int `json:"voice_minutes"`
}

// ChangeStat describes one metric's movement between two periods. Percent is
// "0.00" when the previous period was zero; Direction follows the sign of
// Absolute.
type ChangeStat struct {
	Absolute  int    `json:"absolute"`
	Percent   string `json:"percent"`
	Direction string `json:"direction"`
}

type PeriodComparison struct {
	Days     int                   `json:"days"`
	Current  PeriodTotals          `json:"current"`
	Previous PeriodTotals          `json:"previous"`
	Changes  map[string]ChangeStat `json:"changes"`
}

type GrowthPoint struct {
	Date         time.Time `json:"date"`
	MemberTotal  int       `json:"member_total"`
	MemberJoins  int       `json:"member_joins"`
	MemberLeaves int       `json:"member_leaves"`
}

type DayPrediction struct {
	Day              int `json:"day"`
	PredictedMembers int `json:"predicted_members"`
}

// GrowthPrediction is the OLS member-count forecast. InsufficientData marks
// the valid "not enough history" result (fewer than 7 rollups); it is not an
// error.
type GrowthPrediction struct {
	InsufficientData bool            `json:"insufficient_data"`
	Historical       []GrowthPoint   `json:"historical,omitempty"`
	Predictions      []DayPrediction `json:"predictions,omitempty"`
	Confidence       string          `json:"confidence"`
	Trend            string          `json:"trend"`
	DailyGrowth      string          `json:"daily_growth"`
}

type EngagementSummary struct {
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	Trend             string  `json:"trend"`
}

type ModeratorStat struct {
	ModeratorID string `json:"moderator_id"`
	Actions     int    `json:"actions"`
}

type ModerationStats struct {
	ByAction      map[string]int  `json:"by_action"`
	TopModerators []ModeratorStat `json:"top_moderators"`
}

type MessageSummary struct {
	Sent    int `json:"sent"`
	Edited  int `json:"edited"`
	Deleted int `json:"deleted"`
}

type VoiceSummary struct {
	TotalMinutes int `json:"total_minutes"`
	Sessions     int `json:"sessions"`
	UniqueUsers  int `json:"unique_users"`
}

type RealtimeStats struct {
	Last24Hours model.RealtimeCounters `json:"last_24_hours"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ComprehensiveAnalytics is the full dashboard payload for one guild window.
type ComprehensiveAnalytics struct {
	TimeRange int       `json:"time_range"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Current        *model.GuildRollup  `json:"current,omitempty"`
	Daily          []model.GuildRollup `json:"daily_analytics"`
	Moderation     ModerationStats     `json:"moderation"`
	Growth         []GrowthPoint       `json:"growth"`
	Voice          VoiceSummary        `json:"voice"`
	Messages       MessageSummary      `json:"messages"`
	TopUsers       []LeaderboardEntry  `json:"top_users"`
	Channels       []model.TopChannel  `json:"channels"`
	HourlyActivity [24]int             `json:"hourly_activity"`
	Engagement     EngagementSummary   `json:"engagement"`
	Retention      RetentionStats      `json:"retention"`
}

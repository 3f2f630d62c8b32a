package repository

import (
	"context"
	"time"

	"github.com/wardenbot/warden/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModeratorCount is an aggregated action count for one moderator.
type ModeratorCount struct {
	ModeratorID string `json:"moderator_id"`
	Actions     int    `json:"actions"`
}

// AnalyticsRepository is the persistence boundary of the analytics engine.
// Merge operations are additive upserts (counters add, derived fields
// replace); ReplaceMemberSnapshot only ever touches the snapshot columns.
type AnalyticsRepository interface {
	MergeGuildCounters(ctx context.Context, guildID string, day time.Time, delta *model.GuildDelta) error
	MergeUserCounters(ctx context.Context, guildID, userID string, day time.Time, delta *model.UserDelta) error
	ReplaceMemberSnapshot(ctx context.Context, guildID string, day time.Time, snap model.MemberComposition) error

	RollupsInRange(ctx context.Context, guildID string, from, to time.Time) ([]model.GuildRollup, error)
	LatestRollup(ctx context.Context, guildID string) (*model.GuildRollup, error)
	UserActivityInRange(ctx context.Context, guildID string, from, to time.Time) ([]model.UserActivity, error)
	MemberEventsInRange(ctx context.Context, guildID string, from, to time.Time) ([]model.MemberLog, error)

	ModerationCountsByAction(ctx context.Context, guildID string, from time.Time) (map[string]int, error)
	TopModerators(ctx context.Context, guildID string, from time.Time, limit int) ([]ModeratorCount, error)
	ChannelActivity(ctx context.Context, guildID string, from time.Time, limit int) ([]model.TopChannel, error)
	HourlyHistogram(ctx context.Context, guildID string, from time.Time) ([24]int, error)
	RealtimeCounters(ctx context.Context, guildID string, since time.Time) (*model.RealtimeCounters, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// MergeGuildCounters upserts one drained guild delta into the (guild, day)
// rollup. Counter columns are incremented in place; ranked lists, peak hour
// and engagement fields are replaced with the latest drained values. The
// whole merge is a single atomic upsert, so retries can double-count but can
// never leave a partial record.
func (r *analyticsRepository) MergeGuildCounters(ctx context.Context, guildID string, day time.Time, d *model.GuildDelta) error {
	assignments := map[string]interface{}{
		"messages_total":     gorm.Expr("guild_rollups.messages_total + ?", d.MessagesTotal),
		"messages_edited":    gorm.Expr("guild_rollups.messages_edited + ?", d.MessagesEdited),
		"messages_deleted":   gorm.Expr("guild_rollups.messages_deleted + ?", d.MessagesDeleted),
		"messages_by_humans": gorm.Expr("guild_rollups.messages_by_humans + ?", d.MessagesByHumans),
		"messages_by_bots":   gorm.Expr("guild_rollups.messages_by_bots + ?", d.MessagesByBots),
		"voice_joins":        gorm.Expr("guild_rollups.voice_joins + ?", d.VoiceJoins),
		"voice_minutes":      gorm.Expr("guild_rollups.voice_minutes + ?", d.VoiceMinutes),
		"voice_unique_users": gorm.Expr("guild_rollups.voice_unique_users + ?", d.VoiceUniqueUsers),
		"member_joins":       gorm.Expr("guild_rollups.member_joins + ?", d.MemberJoins),
		"member_leaves":      gorm.Expr("guild_rollups.member_leaves + ?", d.MemberLeaves),
		"member_net":         gorm.Expr("guild_rollups.member_net + ?", d.MemberJoins-d.MemberLeaves),
		"mod_warns":          gorm.Expr("guild_rollups.mod_warns + ?", d.ModActions[model.ModActionWarn]),
		"mod_mutes":          gorm.Expr("guild_rollups.mod_mutes + ?", d.ModActions[model.ModActionMute]),
		"mod_kicks":          gorm.Expr("guild_rollups.mod_kicks + ?", d.ModActions[model.ModActionKick]),
		"mod_bans":           gorm.Expr("guild_rollups.mod_bans + ?", d.ModActions[model.ModActionBan]),
		"mod_timeouts":       gorm.Expr("guild_rollups.mod_timeouts + ?", d.ModActions[model.ModActionTimeout]),
		"mod_total":          gorm.Expr("guild_rollups.mod_total + ?", d.ModTotal),
		"roles_added":        gorm.Expr("guild_rollups.roles_added + ?", d.RolesAdded),
		"roles_removed":      gorm.Expr("guild_rollups.roles_removed + ?", d.RolesRemoved),
		"commands_used":      gorm.Expr("guild_rollups.commands_used + ?", d.CommandsUsed),
		"updated_at":         gorm.Expr("CURRENT_TIMESTAMP"),
	}

	// Derived fields: latest drained window wins.
	assignments["command_usage"] = gorm.Expr("?::jsonb", jsonValue(d.CommandUsage))
	assignments["top_channels"] = gorm.Expr("?::jsonb", jsonValue(d.TopChannels))
	assignments["top_users"] = gorm.Expr("?::jsonb", jsonValue(d.TopUsers))
	assignments["top_emojis"] = gorm.Expr("?::jsonb", jsonValue(d.TopEmojis))
	assignments["peak_hour"] = d.PeakHour
	assignments["peak_hour_messages"] = d.PeakHourMessages
	assignments["active_users"] = d.ActiveUsers
	assignments["engagement_rate"] = d.EngagementRate
	assignments["avg_messages_per_user"] = d.AvgMessagesPerUser

	row := rollupFromGuildDelta(guildID, day, d)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(row).Error
}

// MergeUserCounters upserts one drained user delta into the (guild, user,
// day) activity record. The engagement score is recomputed in SQL from the
// merged cumulative totals so it always reflects the full day, not a single
// flush window.
func (r *analyticsRepository) MergeUserCounters(ctx context.Context, guildID, userID string, day time.Time, d *model.UserDelta) error {
	distinctChannels := len(d.ChannelsActive)

	assignments := map[string]interface{}{
		"username":           d.Username,
		"messages_sent":      gorm.Expr("user_activities.messages_sent + ?", d.MessagesSent),
		"messages_edited":    gorm.Expr("user_activities.messages_edited + ?", d.MessagesEdited),
		"messages_deleted":   gorm.Expr("user_activities.messages_deleted + ?", d.MessagesDeleted),
		"character_count":    gorm.Expr("user_activities.character_count + ?", d.CharacterCount),
		"word_count":         gorm.Expr("user_activities.word_count + ?", d.WordCount),
		"voice_joins":        gorm.Expr("user_activities.voice_joins + ?", d.VoiceJoins),
		"voice_minutes":      gorm.Expr("user_activities.voice_minutes + ?", d.VoiceMinutes),
		"voice_muted":        gorm.Expr("user_activities.voice_muted + ?", d.VoiceMuted),
		"voice_deafened":     gorm.Expr("user_activities.voice_deafened + ?", d.VoiceDeafened),
		"reactions_given":    gorm.Expr("user_activities.reactions_given + ?", d.ReactionsGiven),
		"reactions_received": gorm.Expr("user_activities.reactions_received + ?", d.ReactionsReceived),
		"mentions_users":     gorm.Expr("user_activities.mentions_users + ?", d.MentionsUsers),
		"mentions_roles":     gorm.Expr("user_activities.mentions_roles + ?", d.MentionsRoles),
		"mentions_everyone":  gorm.Expr("user_activities.mentions_everyone + ?", d.MentionsEveryone),
		"engagement_score": gorm.Expr(
			"(LEAST((user_activities.messages_sent + ?) * 2.0, 100) + LEAST((user_activities.voice_minutes + ?) * 0.5, 100) + LEAST(? * 10.0, 50)) / 2.5",
			d.MessagesSent, d.VoiceMinutes, distinctChannels,
		),
		"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}

	if !d.LastActivity.IsZero() {
		assignments["last_activity"] = d.LastActivity
	}
	assignments["channels_active"] = gorm.Expr("?::jsonb", jsonValue(d.ChannelsActive))

	row := activityFromUserDelta(guildID, userID, day, d)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(row).Error
}

// ReplaceMemberSnapshot upserts the point-in-time member composition for the
// day without touching any counter column.
func (r *analyticsRepository) ReplaceMemberSnapshot(ctx context.Context, guildID string, day time.Time, snap model.MemberComposition) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"members_total":  snap.Total,
			"members_online": snap.Online,
			"members_bots":   snap.Bots,
			"members_humans": snap.Humans,
			"updated_at":     gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&model.GuildRollup{
		GuildID:       guildID,
		Date:          day,
		MembersTotal:  snap.Total,
		MembersOnline: snap.Online,
		MembersBots:   snap.Bots,
		MembersHumans: snap.Humans,
	}).Error
}

func (r *analyticsRepository) RollupsInRange(ctx context.Context, guildID string, from, to time.Time) ([]model.GuildRollup, error) {
	var rollups []model.GuildRollup
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND date >= ? AND date <= ?", guildID, from, to).
		Order("date ASC").
		Find(&rollups).Error
	return rollups, err
}

func (r *analyticsRepository) LatestRollup(ctx context.Context, guildID string) (*model.GuildRollup, error) {
	var rollup model.GuildRollup
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("date DESC").
		First(&rollup).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rollup, nil
}

func (r *analyticsRepository) UserActivityInRange(ctx context.Context, guildID string, from, to time.Time) ([]model.UserActivity, error) {
	var activities []model.UserActivity
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND date >= ? AND date <= ?", guildID, from, to).
		Order("date ASC").
		Find(&activities).Error
	return activities, err
}

func (r *analyticsRepository) MemberEventsInRange(ctx context.Context, guildID string, from, to time.Time) ([]model.MemberLog, error) {
	var logs []model.MemberLog
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND timestamp >= ? AND timestamp <= ? AND action IN ?",
			guildID, from, to, []string{model.MemberActionJoin, model.MemberActionLeave}).
		Order("timestamp ASC").
		Find(&logs).Error
	return logs, err
}

func (r *analyticsRepository) ModerationCountsByAction(ctx context.Context, guildID string, from time.Time) (map[string]int, error) {
	type result struct {
		Action string
		Count  int
	}
	var results []result
	err := r.db.WithContext(ctx).Model(&model.ModerationCase{}).
		Select("action, COUNT(*) as count").
		Where("guild_id = ? AND timestamp >= ?", guildID, from).
		Group("action").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(results))
	for _, res := range results {
		counts[res.Action] = res.Count
	}
	return counts, nil
}

func (r *analyticsRepository) TopModerators(ctx context.Context, guildID string, from time.Time, limit int) ([]ModeratorCount, error) {
	var results []ModeratorCount
	err := r.db.WithContext(ctx).Model(&model.ModerationCase{}).
		Select("moderator_id, COUNT(*) as actions").
		Where("guild_id = ? AND timestamp >= ?", guildID, from).
		Group("moderator_id").
		Order("actions DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *analyticsRepository) ChannelActivity(ctx context.Context, guildID string, from time.Time, limit int) ([]model.TopChannel, error) {
	type result struct {
		ChannelID   string
		ChannelName string
		Count       int
	}
	var results []result
	err := r.db.WithContext(ctx).Model(&model.MessageLog{}).
		Select("channel_id, MAX(channel_name) as channel_name, COUNT(*) as count").
		Where("guild_id = ? AND timestamp >= ? AND action = ?", guildID, from, model.MessageActionCreated).
		Group("channel_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	channels := make([]model.TopChannel, 0, len(results))
	for _, res := range results {
		channels = append(channels, model.TopChannel{
			ChannelID:    res.ChannelID,
			ChannelName:  res.ChannelName,
			MessageCount: res.Count,
		})
	}
	return channels, nil
}

func (r *analyticsRepository) HourlyHistogram(ctx context.Context, guildID string, from time.Time) ([24]int, error) {
	type result struct {
		Hour  int
		Count int
	}
	var results []result
	var histogram [24]int
	err := r.db.WithContext(ctx).Model(&model.MessageLog{}).
		Select("EXTRACT(HOUR FROM timestamp)::int as hour, COUNT(*) as count").
		Where("guild_id = ? AND timestamp >= ? AND action = ?", guildID, from, model.MessageActionCreated).
		Group("hour").
		Scan(&results).Error
	if err != nil {
		return histogram, err
	}

	for _, res := range results {
		if res.Hour >= 0 && res.Hour < 24 {
			histogram[res.Hour] = res.Count
		}
	}
	return histogram, nil
}

func (r *analyticsRepository) RealtimeCounters(ctx context.Context, guildID string, since time.Time) (*model.RealtimeCounters, error) {
	db := r.db.WithContext(ctx)
	counters := &model.RealtimeCounters{}

	err := db.Model(&model.MessageLog{}).
		Where("guild_id = ? AND timestamp >= ? AND action = ?", guildID, since, model.MessageActionCreated).
		Count(&counters.Messages).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.MemberLog{}).
		Where("guild_id = ? AND timestamp >= ? AND action = ?", guildID, since, model.MemberActionJoin).
		Count(&counters.Joins).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.MemberLog{}).
		Where("guild_id = ? AND timestamp >= ? AND action = ?", guildID, since, model.MemberActionLeave).
		Count(&counters.Leaves).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.VoiceLog{}).
		Where("guild_id = ? AND timestamp >= ?", guildID, since).
		Distinct("user_id").
		Count(&counters.ActiveVoice).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.ModerationCase{}).
		Where("guild_id = ? AND timestamp >= ?", guildID, since).
		Count(&counters.ModerationActions).Error
	if err != nil {
		return nil, err
	}

	return counters, nil
}

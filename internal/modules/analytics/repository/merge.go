package repository

import (
	"encoding/json"
	"time"

	"github.com/wardenbot/warden/internal/model"
)

// rollupFromGuildDelta builds the insert row for a first flush of the day.
func rollupFromGuildDelta(guildID string, day time.Time, d *model.GuildDelta) *model.GuildRollup {
	r := &model.GuildRollup{GuildID: guildID, Date: day}
	ApplyGuildDelta(r, d)
	return r
}

// activityFromUserDelta builds the insert row for a first flush of the day.
func activityFromUserDelta(guildID, userID string, day time.Time, d *model.UserDelta) *model.UserActivity {
	a := &model.UserActivity{GuildID: guildID, UserID: userID, Date: day}
	ApplyUserDelta(a, d)
	return a
}

// ApplyGuildDelta merges a drained guild delta into a rollup record: counters
// add, derived fields (ranked lists, peak hour, engagement) replace. The SQL
// upsert in MergeGuildCounters implements exactly these semantics.
func ApplyGuildDelta(r *model.GuildRollup, d *model.GuildDelta) {
	r.MessagesTotal += d.MessagesTotal
	r.MessagesEdited += d.MessagesEdited
	r.MessagesDeleted += d.MessagesDeleted
	r.MessagesByHumans += d.MessagesByHumans
	r.MessagesByBots += d.MessagesByBots

	r.VoiceJoins += d.VoiceJoins
	r.VoiceMinutes += d.VoiceMinutes
	r.VoiceUniqueUsers += d.VoiceUniqueUsers

	r.MemberJoins += d.MemberJoins
	r.MemberLeaves += d.MemberLeaves
	r.MemberNet += d.MemberJoins - d.MemberLeaves

	r.ModWarns += d.ModActions[model.ModActionWarn]
	r.ModMutes += d.ModActions[model.ModActionMute]
	r.ModKicks += d.ModActions[model.ModActionKick]
	r.ModBans += d.ModActions[model.ModActionBan]
	r.ModTimeouts += d.ModActions[model.ModActionTimeout]
	r.ModTotal += d.ModTotal

	r.RolesAdded += d.RolesAdded
	r.RolesRemoved += d.RolesRemoved
	r.CommandsUsed += d.CommandsUsed

	// Latest drained window wins for derived fields.
	r.CommandUsage = d.CommandUsage
	r.TopChannels = d.TopChannels
	r.TopUsers = d.TopUsers
	r.TopEmojis = d.TopEmojis
	r.PeakHour = d.PeakHour
	r.PeakHourMessages = d.PeakHourMessages
	r.ActiveUsers = d.ActiveUsers
	r.EngagementRate = d.EngagementRate
	r.AvgMessagesPerUser = d.AvgMessagesPerUser
}

// ApplyUserDelta merges a drained user delta into an activity record. The
// engagement score is recomputed from the merged cumulative totals.
func ApplyUserDelta(a *model.UserActivity, d *model.UserDelta) {
	if d.Username != "" {
		a.Username = d.Username
	}

	a.MessagesSent += d.MessagesSent
	a.MessagesEdited += d.MessagesEdited
	a.MessagesDeleted += d.MessagesDeleted
	a.CharacterCount += d.CharacterCount
	a.WordCount += d.WordCount

	a.VoiceJoins += d.VoiceJoins
	a.VoiceMinutes += d.VoiceMinutes
	a.VoiceMuted += d.VoiceMuted
	a.VoiceDeafened += d.VoiceDeafened

	a.ReactionsGiven += d.ReactionsGiven
	a.ReactionsReceived += d.ReactionsReceived

	a.MentionsUsers += d.MentionsUsers
	a.MentionsRoles += d.MentionsRoles
	a.MentionsEveryone += d.MentionsEveryone

	a.ChannelsActive = d.ChannelsActive
	a.EngagementScore = model.EngagementScore(a.MessagesSent, a.VoiceMinutes, len(d.ChannelsActive))

	if a.FirstActivity == nil && !d.FirstActivity.IsZero() {
		first := d.FirstActivity
		a.FirstActivity = &first
	}
	if !d.LastActivity.IsZero() {
		last := d.LastActivity
		a.LastActivity = &last
	}
}

// jsonValue marshals a derived list for a raw jsonb column assignment.
// clause.Assignments bypasses gorm's field serializers, so the cast is done
// here.
func jsonValue(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

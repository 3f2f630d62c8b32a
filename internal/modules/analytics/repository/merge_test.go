package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/model"
)

func TestApplyGuildDeltaAddsCountersReplacesDerived(t *testing.T) {
	r := &model.GuildRollup{
		MessagesTotal: 100,
		MemberJoins:   10,
		MemberLeaves:  4,
		MemberNet:     6,
		TopChannels:   []model.TopChannel{{ChannelID: "old", MessageCount: 99}},
		ActiveUsers:   50,
	}

	ApplyGuildDelta(r, &model.GuildDelta{
		MessagesTotal: 20,
		MemberJoins:   3,
		MemberLeaves:  1,
		ModActions:    map[string]int{model.ModActionWarn: 2, model.ModActionBan: 1},
		ModTotal:      3,
		TopChannels:   []model.TopChannel{{ChannelID: "new", MessageCount: 15}},
		ActiveUsers:   12,
	})

	assert.Equal(t, 120, r.MessagesTotal)
	assert.Equal(t, 13, r.MemberJoins)
	assert.Equal(t, 5, r.MemberLeaves)
	assert.Equal(t, 8, r.MemberNet)
	assert.Equal(t, 2, r.ModWarns)
	assert.Equal(t, 1, r.ModBans)
	assert.Equal(t, 3, r.ModTotal)

	// Derived fields carry the latest window only.
	require.Len(t, r.TopChannels, 1)
	assert.Equal(t, "new", r.TopChannels[0].ChannelID)
	assert.Equal(t, 12, r.ActiveUsers)
}

func TestApplyUserDeltaRecomputesEngagement(t *testing.T) {
	a := &model.UserActivity{MessagesSent: 3, VoiceMinutes: 20}

	ApplyUserDelta(a, &model.UserDelta{
		MessagesSent: 2,
		VoiceMinutes: 10,
		ChannelsActive: []model.ChannelActivity{
			{ChannelID: "ch1", MessageCount: 1},
			{ChannelID: "ch2", MessageCount: 1},
		},
	})

	assert.Equal(t, 5, a.MessagesSent)
	assert.Equal(t, 30, a.VoiceMinutes)
	// (5*2 + 30*0.5 + 2*10) / 2.5
	assert.InDelta(t, 18.0, a.EngagementScore, 1e-9)
}

func TestApplyUserDeltaActivityTimestamps(t *testing.T) {
	first := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 20, 17, 0, 0, 0, time.UTC)

	a := &model.UserActivity{}
	ApplyUserDelta(a, &model.UserDelta{FirstActivity: first, LastActivity: first})
	ApplyUserDelta(a, &model.UserDelta{FirstActivity: later, LastActivity: later})

	require.NotNil(t, a.FirstActivity)
	require.NotNil(t, a.LastActivity)
	assert.Equal(t, first, *a.FirstActivity)
	assert.Equal(t, later, *a.LastActivity)
}

func TestApplyUserDeltaKeepsUsernameWhenDeltaBlank(t *testing.T) {
	a := &model.UserActivity{Username: "alice"}
	ApplyUserDelta(a, &model.UserDelta{MessagesSent: 1})
	assert.Equal(t, "alice", a.Username)
}

func TestJSONValue(t *testing.T) {
	assert.Equal(t, "[]", jsonValue(nil))
	assert.Equal(t, "[]", jsonValue([]model.TopChannel(nil)))
	assert.Equal(t,
		`[{"channel_id":"ch1","message_count":3}]`,
		jsonValue([]model.TopChannel{{ChannelID: "ch1", MessageCount: 3}}),
	)
}

func TestEngagementScoreCaps(t *testing.T) {
	// 10 messages, 20 voice minutes, 1 channel: (20 + 10 + 10) / 2.5
	assert.InDelta(t, 16.0, model.EngagementScore(10, 20, 1), 1e-9)

	// Everything above the caps flattens out at (100+100+50)/2.5.
	assert.InDelta(t, 100.0, model.EngagementScore(10000, 10000, 100), 1e-9)
}

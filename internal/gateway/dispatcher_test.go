package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/model"
	activitylogRepo "github.com/wardenbot/warden/internal/modules/activitylog/repository"
	"github.com/wardenbot/warden/internal/modules/analytics/collector"
)

func newTestDispatcher() (*Dispatcher, *collector.Collector, *activitylogRepo.Memory) {
	c := collector.New()
	logs := activitylogRepo.NewMemory()
	d := NewDispatcher(c, logs, NewDirectoryCache())
	return d, c, logs
}

func TestHandleMessageCreateLogsAndCounts(t *testing.T) {
	d, c, logs := newTestDispatcher()

	err := d.HandleMessageCreate(context.Background(), &MessageCreateEvent{
		GuildID:       "g1",
		MessageID:     "m1",
		ChannelID:     "ch1",
		ChannelName:   "general",
		AuthorID:      "u1",
		AuthorTag:     "alice#0",
		ContentLength: 25,
		WordCount:     5,
	})
	require.NoError(t, err)

	require.Len(t, logs.MessageLogs, 1)
	assert.Equal(t, model.MessageActionCreated, logs.MessageLogs[0].Action)
	assert.Equal(t, "general", logs.MessageLogs[0].ChannelName)

	delta := c.DrainGuildCounters()["g1"]
	require.NotNil(t, delta)
	assert.Equal(t, 1, delta.MessagesTotal)
	assert.Equal(t, 1, delta.MessagesByHumans)
}

func TestHandleMessageCreateFromBot(t *testing.T) {
	d, c, logs := newTestDispatcher()

	err := d.HandleMessageCreate(context.Background(), &MessageCreateEvent{
		GuildID:   "g1",
		MessageID: "m1",
		ChannelID: "ch1",
		AuthorID:  "bot1",
		Bot:       true,
	})
	require.NoError(t, err)

	// Bot traffic counts toward guild totals but is never logged per message.
	assert.Empty(t, logs.MessageLogs)
	delta := c.DrainGuildCounters()["g1"]
	assert.Equal(t, 1, delta.MessagesByBots)
	assert.Empty(t, c.DrainUserCounters())
}

func TestHandleMessageCreateRecordsMentions(t *testing.T) {
	d, c, _ := newTestDispatcher()

	err := d.HandleMessageCreate(context.Background(), &MessageCreateEvent{
		GuildID:         "g1",
		MessageID:       "m1",
		ChannelID:       "ch1",
		AuthorID:        "u1",
		MentionUsers:    2,
		MentionEveryone: true,
	})
	require.NoError(t, err)

	u := c.DrainUserCounters()[model.UserKey{GuildID: "g1", UserID: "u1"}]
	require.NotNil(t, u)
	assert.Equal(t, 2, u.MentionsUsers)
	assert.Equal(t, 1, u.MentionsEveryone)
}

func TestVoiceSessionLifecycle(t *testing.T) {
	d, c, logs := newTestDispatcher()

	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	current := start
	d.now = func() time.Time { return current }

	err := d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", UserTag: "alice#0", NewChannelID: "vc1",
	})
	require.NoError(t, err)

	current = start.Add(5 * time.Minute)
	err = d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", UserTag: "alice#0", OldChannelID: "vc1", NewChannelID: "vc2",
	})
	require.NoError(t, err)

	current = start.Add(31*time.Minute + 40*time.Second)
	err = d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", UserTag: "alice#0", OldChannelID: "vc2",
	})
	require.NoError(t, err)

	require.Len(t, logs.VoiceLogs, 3)
	assert.Equal(t, model.VoiceActionJoin, logs.VoiceLogs[0].Action)
	assert.Equal(t, model.VoiceActionMove, logs.VoiceLogs[1].Action)
	assert.Equal(t, model.VoiceActionLeave, logs.VoiceLogs[2].Action)
	// Whole session, including the move, in seconds.
	assert.Equal(t, 1900, logs.VoiceLogs[2].Duration)

	delta := c.DrainGuildCounters()["g1"]
	require.NotNil(t, delta)
	assert.Equal(t, 1, delta.VoiceJoins)
	assert.Equal(t, 31, delta.VoiceMinutes)
}

func TestVoiceLeaveWithoutTrackedJoin(t *testing.T) {
	d, c, logs := newTestDispatcher()

	err := d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", OldChannelID: "vc1",
	})
	require.NoError(t, err)

	require.Len(t, logs.VoiceLogs, 1)
	assert.Equal(t, 0, logs.VoiceLogs[0].Duration)
	assert.Empty(t, c.DrainGuildCounters())
}

func TestVoiceMuteToggleDetection(t *testing.T) {
	d, c, logs := newTestDispatcher()

	require.NoError(t, d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", NewChannelID: "vc1",
	}))

	// Mute toggled on.
	require.NoError(t, d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", OldChannelID: "vc1", NewChannelID: "vc1", SelfMute: true,
	}))
	// Repeated state carries no new toggle.
	require.NoError(t, d.HandleVoiceState(context.Background(), &VoiceStateEvent{
		GuildID: "g1", UserID: "u1", OldChannelID: "vc1", NewChannelID: "vc1", SelfMute: true,
	}))

	muteLogs := 0
	for _, l := range logs.VoiceLogs {
		if l.Action == model.VoiceActionMute {
			muteLogs++
		}
	}
	assert.Equal(t, 1, muteLogs)

	u := c.DrainUserCounters()[model.UserKey{GuildID: "g1", UserID: "u1"}]
	require.NotNil(t, u)
	assert.Equal(t, 1, u.VoiceMuted)
}

func TestHandleMemberUpdatesCollectorAndLog(t *testing.T) {
	d, c, logs := newTestDispatcher()

	require.NoError(t, d.HandleMember(context.Background(), &MemberEvent{
		GuildID: "g1", UserID: "u1", Action: model.MemberActionJoin, MemberCount: 101,
	}))
	require.NoError(t, d.HandleMember(context.Background(), &MemberEvent{
		GuildID: "g1", UserID: "u2", Action: model.MemberActionLeave, MemberCount: 100,
	}))

	require.Len(t, logs.MemberLogs, 2)
	assert.Equal(t, 101, logs.MemberLogs[0].MemberCount)

	delta := c.DrainGuildCounters()["g1"]
	assert.Equal(t, 1, delta.MemberJoins)
	assert.Equal(t, 1, delta.MemberLeaves)
}

func TestDirectoryUpdateFeedsFlusher(t *testing.T) {
	d, _, _ := newTestDispatcher()

	d.HandleDirectoryUpdate(context.Background(), &DirectoryUpdate{
		GuildID: "g1", Total: 200, Online: 50, Bots: 10, Humans: 190,
	})

	compositions, err := d.directory.GuildCompositions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.MemberComposition{Total: 200, Online: 50, Bots: 10, Humans: 190}, compositions["g1"])
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/repository"
)

func newTestService(mem *repository.Memory, now time.Time) *analyticsService {
	return &analyticsService{
		repo: mem,
		now:  func() time.Time { return now },
	}
}

func TestComputeRetention(t *testing.T) {
	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	events := []model.MemberLog{
		{GuildID: "g1", UserID: "u1", Action: model.MemberActionJoin, Timestamp: base},
		{GuildID: "g1", UserID: "u2", Action: model.MemberActionJoin, Timestamp: base},
		{GuildID: "g1", UserID: "u3", Action: model.MemberActionJoin, Timestamp: base},
		{GuildID: "g1", UserID: "u2", Action: model.MemberActionLeave, Timestamp: base.Add(time.Hour)},
	}

	stats := computeRetention(events)
	assert.Equal(t, 3, stats.NewMembers)
	assert.Equal(t, 2, stats.Retained)
	assert.Equal(t, 1, stats.Left)
	assert.Equal(t, "66.67", stats.RetentionRate)
}

func TestComputeRetentionNoJoins(t *testing.T) {
	stats := computeRetention(nil)
	assert.Equal(t, "0.00", stats.RetentionRate)
	assert.Zero(t, stats.NewMembers)
}

func TestChangeStat(t *testing.T) {
	up := changeStat(150, 100)
	assert.Equal(t, 50, up.Absolute)
	assert.Equal(t, "50.00", up.Percent)
	assert.Equal(t, "up", up.Direction)

	down := changeStat(80, 100)
	assert.Equal(t, -20, down.Absolute)
	assert.Equal(t, "-20.00", down.Percent)
	assert.Equal(t, "down", down.Direction)

	fromZero := changeStat(10, 0)
	assert.Equal(t, 10, fromZero.Absolute)
	assert.Equal(t, "0.00", fromZero.Percent)
	assert.Equal(t, "up", fromZero.Direction)
}

func TestCompareIdenticalPeriods(t *testing.T) {
	mem := repository.NewMemory()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// Same totals in both 7-day windows.
	for _, offset := range []int{-3, -10} {
		mem.AddRollup(model.GuildRollup{
			GuildID:       "g1",
			Date:          now.AddDate(0, 0, offset),
			MessagesTotal: 100,
			MemberJoins:   5,
			VoiceMinutes:  60,
		})
	}

	svc := newTestService(mem, now)
	cmp, err := svc.Compare(context.Background(), "g1", 7)
	require.NoError(t, err)

	assert.Equal(t, cmp.Current, cmp.Previous)
	messages := cmp.Changes["messages"]
	assert.Equal(t, 0, messages.Absolute)
	assert.Equal(t, "0.00", messages.Percent)
	assert.Equal(t, "stable", messages.Direction)
}

func TestCompareDetectsGrowth(t *testing.T) {
	mem := repository.NewMemory()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mem.AddRollup(model.GuildRollup{GuildID: "g1", Date: now.AddDate(0, 0, -2), MessagesTotal: 300})
	mem.AddRollup(model.GuildRollup{GuildID: "g1", Date: now.AddDate(0, 0, -9), MessagesTotal: 200})

	svc := newTestService(mem, now)
	cmp, err := svc.Compare(context.Background(), "g1", 7)
	require.NoError(t, err)

	messages := cmp.Changes["messages"]
	assert.Equal(t, 100, messages.Absolute)
	assert.Equal(t, "50.00", messages.Percent)
	assert.Equal(t, "up", messages.Direction)
}

func TestRankUsersByMessagesWithTieBreak(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	activities := []model.UserActivity{
		{GuildID: "g1", UserID: "u2", Username: "bob", Date: day, MessagesSent: 50},
		{GuildID: "g1", UserID: "u1", Username: "alice", Date: day, MessagesSent: 50},
		{GuildID: "g1", UserID: "u3", Username: "carol", Date: day, MessagesSent: 80},
	}

	entries := rankUsers(activities, MetricMessages, 10)
	require.Len(t, entries, 3)
	assert.Equal(t, "u3", entries[0].UserID)
	assert.Equal(t, "u1", entries[1].UserID)
	assert.Equal(t, "u2", entries[2].UserID)
}

func TestRankUsersSumsAcrossDays(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	activities := []model.UserActivity{
		{GuildID: "g1", UserID: "u1", Username: "alice", Date: day, MessagesSent: 10, VoiceMinutes: 30, EngagementScore: 20},
		{GuildID: "g1", UserID: "u1", Username: "alice", Date: day.AddDate(0, 0, 1), MessagesSent: 20, VoiceMinutes: 10, EngagementScore: 40},
	}

	entries := rankUsers(activities, MetricMessages, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, 30, entries[0].TotalMessages)
	assert.Equal(t, 40, entries[0].TotalMinutes)
	assert.InDelta(t, 30.0, entries[0].AvgEngagement, 1e-9)
}

func TestLeaderboardRejectsUnknownMetric(t *testing.T) {
	svc := newTestService(repository.NewMemory(), time.Now())

	_, err := svc.Leaderboard(context.Background(), "g1", "reputation", 7, 10)
	assert.Error(t, err)
}

func TestLeaderboardVoiceMetric(t *testing.T) {
	mem := repository.NewMemory()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	day := now.AddDate(0, 0, -1)

	mem.AddActivity(model.UserActivity{GuildID: "g1", UserID: "u1", Date: day, MessagesSent: 100, VoiceMinutes: 5})
	mem.AddActivity(model.UserActivity{GuildID: "g1", UserID: "u2", Date: day, MessagesSent: 1, VoiceMinutes: 120})

	svc := newTestService(mem, now)
	lb, err := svc.Leaderboard(context.Background(), "g1", MetricVoice, 7, 10)
	require.NoError(t, err)

	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "u2", lb.Entries[0].UserID)
}

func TestEngagementTrendHysteresis(t *testing.T) {
	makeRollups := func(rates ...float64) []model.GuildRollup {
		base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		out := make([]model.GuildRollup, len(rates))
		for i, rate := range rates {
			out[i] = model.GuildRollup{Date: base.AddDate(0, 0, i), EngagementRate: rate}
		}
		return out
	}

	// Last 7 more than 10% above first 7.
	up := engagementTrend(makeRollups(0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.20, 0.20, 0.20, 0.20, 0.20, 0.20, 0.20))
	assert.Equal(t, "increasing", up.Trend)

	down := engagementTrend(makeRollups(0.20, 0.20, 0.20, 0.20, 0.20, 0.20, 0.20, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10))
	assert.Equal(t, "decreasing", down.Trend)

	// Within the 10% band: stays stable.
	flat := engagementTrend(makeRollups(0.20, 0.20, 0.20, 0.20, 0.20, 0.20, 0.20, 0.21, 0.21, 0.21, 0.21, 0.21, 0.21, 0.21))
	assert.Equal(t, "stable", flat.Trend)

	assert.Equal(t, "stable", engagementTrend(nil).Trend)
}

func TestComprehensiveOnEmptyGuild(t *testing.T) {
	mem := repository.NewMemory()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	svc := newTestService(mem, now)
	result, err := svc.Comprehensive(context.Background(), "ghost", 30)
	require.NoError(t, err)

	assert.Equal(t, 30, result.TimeRange)
	assert.Nil(t, result.Current)
	assert.Empty(t, result.Daily)
	assert.Equal(t, "0.00", result.Retention.RetentionRate)
	assert.NotNil(t, result.Moderation.ByAction)
}

func TestComprehensiveAggregatesWindow(t *testing.T) {
	mem := repository.NewMemory()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mem.AddRollup(model.GuildRollup{
		GuildID:       "g1",
		Date:          now.AddDate(0, 0, -2),
		MessagesTotal: 120,
		VoiceMinutes:  200,
		VoiceJoins:    8,
		MembersTotal:  500,
	})
	mem.AddRollup(model.GuildRollup{
		GuildID:       "g1",
		Date:          now.AddDate(0, 0, -1),
		MessagesTotal: 80,
		VoiceMinutes:  100,
		VoiceJoins:    4,
		MembersTotal:  505,
	})
	mem.Cases = append(mem.Cases, model.ModerationCase{
		GuildID: "g1", ModeratorID: "m1", Action: model.ModActionWarn, Timestamp: now.Add(-time.Hour),
	})

	svc := newTestService(mem, now)
	result, err := svc.Comprehensive(context.Background(), "g1", 7)
	require.NoError(t, err)

	assert.Equal(t, 200, result.Messages.Sent)
	assert.Equal(t, 300, result.Voice.TotalMinutes)
	assert.Equal(t, 12, result.Voice.Sessions)
	assert.Len(t, result.Daily, 2)
	require.NotNil(t, result.Current)
	assert.Equal(t, 505, result.Current.MembersTotal)
	assert.Equal(t, 1, result.Moderation.ByAction[model.ModActionWarn])
	require.Len(t, result.Moderation.TopModerators, 1)
	assert.Equal(t, "m1", result.Moderation.TopModerators[0].ModeratorID)
}

func TestRealtimeCountsLast24Hours(t *testing.T) {
	mem := repository.NewMemory()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mem.MessageLogs = append(mem.MessageLogs,
		model.MessageLog{GuildID: "g1", Action: model.MessageActionCreated, Timestamp: now.Add(-time.Hour)},
		model.MessageLog{GuildID: "g1", Action: model.MessageActionCreated, Timestamp: now.Add(-48 * time.Hour)},
	)
	mem.MemberLogs = append(mem.MemberLogs,
		model.MemberLog{GuildID: "g1", UserID: "u1", Action: model.MemberActionJoin, Timestamp: now.Add(-2 * time.Hour)},
	)

	svc := newTestService(mem, now)
	stats, err := svc.Realtime(context.Background(), "g1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Last24Hours.Messages)
	assert.Equal(t, int64(1), stats.Last24Hours.Joins)
	assert.Equal(t, now, stats.Timestamp)
}

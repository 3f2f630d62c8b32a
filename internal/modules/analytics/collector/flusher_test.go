package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/repository"
)

type staticDirectory struct {
	compositions map[string]model.MemberComposition
}

func (d *staticDirectory) GuildCompositions(_ context.Context) (map[string]model.MemberComposition, error) {
	return d.compositions, nil
}

type failingRepo struct {
	*repository.Memory
}

func (f *failingRepo) MergeGuildCounters(context.Context, string, time.Time, *model.GuildDelta) error {
	return errors.New("connection refused")
}

func (f *failingRepo) MergeUserCounters(context.Context, string, string, time.Time, *model.UserDelta) error {
	return errors.New("connection refused")
}

func newTestFlusher(repo repository.AnalyticsRepository, dir Directory) (*Flusher, *Collector) {
	c := New()
	f := NewFlusher(c, repo, dir, time.UTC, time.Hour, time.Second)
	f.now = func() time.Time { return time.Date(2026, 8, 20, 15, 45, 0, 0, time.UTC) }
	return f, c
}

func TestFlushHourlyPersistsCounters(t *testing.T) {
	mem := repository.NewMemory()
	dir := &staticDirectory{compositions: map[string]model.MemberComposition{
		"g1": {Total: 100, Online: 40, Bots: 10, Humans: 90},
	}}
	f, c := newTestFlusher(mem, dir)

	for i := 0; i < 5; i++ {
		c.RecordMessage("g1", "u1", "alice", "general", 20, 4)
	}
	c.RecordVoiceSession("g1", "u1", "alice", 30)

	f.FlushHourly(context.Background())

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	r := mem.Rollup("g1", day)
	require.NotNil(t, r)
	assert.Equal(t, 5, r.MessagesTotal)
	assert.Equal(t, 30, r.VoiceMinutes)
	assert.Equal(t, 1, r.ActiveUsers)
	assert.InDelta(t, 0.01, r.EngagementRate, 1e-9)
	require.Len(t, r.TopUsers, 1)
	assert.Equal(t, "u1", r.TopUsers[0].UserID)

	a := mem.Activity("g1", "u1", day)
	require.NotNil(t, a)
	assert.Equal(t, 5, a.MessagesSent)
	assert.Equal(t, 30, a.VoiceMinutes)
	// 5 msgs * 2 + 30 min * 0.5 + 1 channel * 10 = 35 points / 2.5
	assert.InDelta(t, 14.0, a.EngagementScore, 1e-9)
}

func TestFlushHourlyIsAdditiveWithinDay(t *testing.T) {
	mem := repository.NewMemory()
	f, c := newTestFlusher(mem, nil)

	c.RecordMessage("g1", "u1", "alice", "general", 10, 2)
	f.FlushHourly(context.Background())

	c.RecordMessage("g1", "u1", "alice", "general", 10, 2)
	c.RecordMessage("g1", "u2", "bob", "general", 10, 2)
	f.FlushHourly(context.Background())

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	r := mem.Rollup("g1", day)
	require.NotNil(t, r)
	assert.Equal(t, 3, r.MessagesTotal)
	// Derived fields reflect only the latest window.
	assert.Equal(t, 2, r.ActiveUsers)

	a := mem.Activity("g1", "u1", day)
	require.NotNil(t, a)
	assert.Equal(t, 2, a.MessagesSent)
}

func TestFlushHourlySkipsEmptyAccumulator(t *testing.T) {
	mem := repository.NewMemory()
	f, _ := newTestFlusher(mem, nil)

	f.FlushHourly(context.Background())

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, mem.Rollup("g1", day))
}

func TestFlushHourlyDropsOnPersistFailure(t *testing.T) {
	repo := &failingRepo{Memory: repository.NewMemory()}
	f, c := newTestFlusher(repo, nil)

	c.RecordMessage("g1", "u1", "alice", "general", 10, 2)
	f.FlushHourly(context.Background())

	// The failed delta is dropped, not retried: the accumulator is empty.
	assert.Empty(t, c.DrainGuildCounters())
	assert.Empty(t, c.DrainUserCounters())
}

func TestSnapshotDailyReplacesMemberCounts(t *testing.T) {
	mem := repository.NewMemory()
	dir := &staticDirectory{compositions: map[string]model.MemberComposition{
		"g1": {Total: 250, Online: 80, Bots: 20, Humans: 230},
	}}
	f, _ := newTestFlusher(mem, dir)

	f.SnapshotDaily(context.Background())
	dir.compositions["g1"] = model.MemberComposition{Total: 260, Online: 90, Bots: 20, Humans: 240}
	f.SnapshotDaily(context.Background())

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	r := mem.Rollup("g1", day)
	require.NotNil(t, r)
	assert.Equal(t, 260, r.MembersTotal)
	assert.Equal(t, 90, r.MembersOnline)
}

func TestDayStartUsesConfiguredTimezone(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	f := NewFlusher(New(), repository.NewMemory(), nil, jakarta, time.Hour, time.Second)

	// 20:00 UTC is already past midnight of the next day in UTC+7.
	at := time.Date(2026, 8, 20, 20, 0, 0, 0, time.UTC)
	day := f.DayStart(at)
	assert.Equal(t, 21, day.Day())
	assert.Equal(t, 0, day.Hour())
}

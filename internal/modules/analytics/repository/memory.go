package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wardenbot/warden/internal/model"
)

type activityKey struct {
	guildID string
	userID  string
	day     time.Time
}

type rollupKey struct {
	guildID string
	day     time.Time
}

// Memory is an in-memory AnalyticsRepository with the same merge semantics as
// the postgres implementation. It backs the analytics tests so flush and
// query behaviour can be exercised without a database.
type Memory struct {
	mu         sync.Mutex
	rollups    map[rollupKey]*model.GuildRollup
	activities map[activityKey]*model.UserActivity

	MemberLogs  []model.MemberLog
	MessageLogs []model.MessageLog
	VoiceLogs   []model.VoiceLog
	Cases       []model.ModerationCase
}

func NewMemory() *Memory {
	return &Memory{
		rollups:    make(map[rollupKey]*model.GuildRollup),
		activities: make(map[activityKey]*model.UserActivity),
	}
}

func (m *Memory) MergeGuildCounters(_ context.Context, guildID string, day time.Time, d *model.GuildDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rollupKey{guildID: guildID, day: day}
	r, ok := m.rollups[key]
	if !ok {
		r = &model.GuildRollup{GuildID: guildID, Date: day}
		m.rollups[key] = r
	}
	ApplyGuildDelta(r, d)
	return nil
}

func (m *Memory) MergeUserCounters(_ context.Context, guildID, userID string, day time.Time, d *model.UserDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := activityKey{guildID: guildID, userID: userID, day: day}
	a, ok := m.activities[key]
	if !ok {
		a = &model.UserActivity{GuildID: guildID, UserID: userID, Date: day}
		m.activities[key] = a
	}
	ApplyUserDelta(a, d)
	return nil
}

func (m *Memory) ReplaceMemberSnapshot(_ context.Context, guildID string, day time.Time, snap model.MemberComposition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rollupKey{guildID: guildID, day: day}
	r, ok := m.rollups[key]
	if !ok {
		r = &model.GuildRollup{GuildID: guildID, Date: day}
		m.rollups[key] = r
	}
	r.MembersTotal = snap.Total
	r.MembersOnline = snap.Online
	r.MembersBots = snap.Bots
	r.MembersHumans = snap.Humans
	return nil
}

// AddRollup seeds a rollup row directly, for read-side tests.
func (m *Memory) AddRollup(r model.GuildRollup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollups[rollupKey{guildID: r.GuildID, day: r.Date}] = &r
}

// AddActivity seeds a user activity row directly, for read-side tests.
func (m *Memory) AddActivity(a model.UserActivity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[activityKey{guildID: a.GuildID, userID: a.UserID, day: a.Date}] = &a
}

// Rollup returns the stored rollup for a (guild, day), or nil.
func (m *Memory) Rollup(guildID string, day time.Time) *model.GuildRollup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rollups[rollupKey{guildID: guildID, day: day}]
}

// Activity returns the stored activity row for a (guild, user, day), or nil.
func (m *Memory) Activity(guildID, userID string, day time.Time) *model.UserActivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activities[activityKey{guildID: guildID, userID: userID, day: day}]
}

func (m *Memory) RollupsInRange(_ context.Context, guildID string, from, to time.Time) ([]model.GuildRollup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.GuildRollup
	for key, r := range m.rollups {
		if key.guildID == guildID && !key.day.Before(from) && !key.day.After(to) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) LatestRollup(_ context.Context, guildID string) (*model.GuildRollup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *model.GuildRollup
	for key, r := range m.rollups {
		if key.guildID != guildID {
			continue
		}
		if latest == nil || r.Date.After(latest.Date) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *Memory) UserActivityInRange(_ context.Context, guildID string, from, to time.Time) ([]model.UserActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.UserActivity
	for key, a := range m.activities {
		if key.guildID == guildID && !key.day.Before(from) && !key.day.After(to) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) MemberEventsInRange(_ context.Context, guildID string, from, to time.Time) ([]model.MemberLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.MemberLog
	for _, l := range m.MemberLogs {
		if l.GuildID != guildID || l.Timestamp.Before(from) || l.Timestamp.After(to) {
			continue
		}
		if l.Action == model.MemberActionJoin || l.Action == model.MemberActionLeave {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) ModerationCountsByAction(_ context.Context, guildID string, from time.Time) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, c := range m.Cases {
		if c.GuildID == guildID && !c.Timestamp.Before(from) {
			counts[c.Action]++
		}
	}
	return counts, nil
}

func (m *Memory) TopModerators(_ context.Context, guildID string, from time.Time, limit int) ([]ModeratorCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byModerator := make(map[string]int)
	for _, c := range m.Cases {
		if c.GuildID == guildID && !c.Timestamp.Before(from) {
			byModerator[c.ModeratorID]++
		}
	}

	out := make([]ModeratorCount, 0, len(byModerator))
	for id, n := range byModerator {
		out = append(out, ModeratorCount{ModeratorID: id, Actions: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Actions != out[j].Actions {
			return out[i].Actions > out[j].Actions
		}
		return out[i].ModeratorID < out[j].ModeratorID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ChannelActivity(_ context.Context, guildID string, from time.Time, limit int) ([]model.TopChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type agg struct {
		name  string
		count int
	}
	byChannel := make(map[string]*agg)
	for _, l := range m.MessageLogs {
		if l.GuildID != guildID || l.Timestamp.Before(from) || l.Action != model.MessageActionCreated {
			continue
		}
		a, ok := byChannel[l.ChannelID]
		if !ok {
			a = &agg{}
			byChannel[l.ChannelID] = a
		}
		a.count++
		if l.ChannelName != "" {
			a.name = l.ChannelName
		}
	}

	out := make([]model.TopChannel, 0, len(byChannel))
	for id, a := range byChannel {
		out = append(out, model.TopChannel{ChannelID: id, ChannelName: a.name, MessageCount: a.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MessageCount != out[j].MessageCount {
			return out[i].MessageCount > out[j].MessageCount
		}
		return out[i].ChannelID < out[j].ChannelID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) HourlyHistogram(_ context.Context, guildID string, from time.Time) ([24]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var histogram [24]int
	for _, l := range m.MessageLogs {
		if l.GuildID == guildID && !l.Timestamp.Before(from) && l.Action == model.MessageActionCreated {
			histogram[l.Timestamp.Hour()]++
		}
	}
	return histogram, nil
}

func (m *Memory) RealtimeCounters(_ context.Context, guildID string, since time.Time) (*model.RealtimeCounters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters := &model.RealtimeCounters{}
	for _, l := range m.MessageLogs {
		if l.GuildID == guildID && !l.Timestamp.Before(since) && l.Action == model.MessageActionCreated {
			counters.Messages++
		}
	}
	for _, l := range m.MemberLogs {
		if l.GuildID != guildID || l.Timestamp.Before(since) {
			continue
		}
		switch l.Action {
		case model.MemberActionJoin:
			counters.Joins++
		case model.MemberActionLeave:
			counters.Leaves++
		}
	}
	voiceUsers := make(map[string]struct{})
	for _, l := range m.VoiceLogs {
		if l.GuildID == guildID && !l.Timestamp.Before(since) {
			voiceUsers[l.UserID] = struct{}{}
		}
	}
	counters.ActiveVoice = int64(len(voiceUsers))
	for _, c := range m.Cases {
		if c.GuildID == guildID && !c.Timestamp.Before(since) {
			counters.ModerationActions++
		}
	}
	return counters, nil
}

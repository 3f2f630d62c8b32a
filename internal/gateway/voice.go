package gateway

import (
	"sync"
	"time"

	"github.com/wardenbot/warden/internal/model"
)

type voiceSession struct {
	channelID string
	start     time.Time
	muted     bool
	deafened  bool
}

// voiceTracker keeps the open voice sessions so a leave event can be turned
// into a completed session duration. Moves keep the original start time; the
// session belongs to the stay in voice, not to one channel.
type voiceTracker struct {
	mu       sync.Mutex
	sessions map[model.UserKey]*voiceSession
}

func newVoiceTracker() *voiceTracker {
	return &voiceTracker{sessions: make(map[model.UserKey]*voiceSession)}
}

func (t *voiceTracker) join(guildID, userID, channelID string, muted, deafened bool, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[model.UserKey{GuildID: guildID, UserID: userID}] = &voiceSession{
		channelID: channelID,
		start:     at,
		muted:     muted,
		deafened:  deafened,
	}
}

func (t *voiceTracker) move(guildID, userID, channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[model.UserKey{GuildID: guildID, UserID: userID}]; ok {
		s.channelID = channelID
	}
}

// leave closes the session and returns its whole-minute duration. A leave
// without a tracked join (bot restarted mid-session) reports zero minutes.
func (t *voiceTracker) leave(guildID, userID string, at time.Time) (minutes, seconds int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := model.UserKey{GuildID: guildID, UserID: userID}
	s, found := t.sessions[key]
	if !found {
		return 0, 0, false
	}
	delete(t.sessions, key)

	elapsed := at.Sub(s.start)
	if elapsed < 0 {
		elapsed = 0
	}
	return int(elapsed.Minutes()), int(elapsed.Seconds()), true
}

// updateFlags records the new mute/deafen state and reports which flags were
// newly switched on.
func (t *voiceTracker) updateFlags(guildID, userID string, muted, deafened bool) (nowMuted, nowDeafened bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[model.UserKey{GuildID: guildID, UserID: userID}]
	if !ok {
		return false, false
	}

	nowMuted = muted && !s.muted
	nowDeafened = deafened && !s.deafened
	s.muted = muted
	s.deafened = deafened
	return nowMuted, nowDeafened
}

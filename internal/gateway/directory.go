package gateway

import (
	"context"
	"sync"

	"github.com/wardenbot/warden/internal/model"
)

// DirectoryCache holds the latest member composition reported per guild. It
// satisfies the flusher's Directory dependency without the API process ever
// holding a gateway connection itself.
type DirectoryCache struct {
	mu           sync.RWMutex
	compositions map[string]model.MemberComposition
}

func NewDirectoryCache() *DirectoryCache {
	return &DirectoryCache{compositions: make(map[string]model.MemberComposition)}
}

func (d *DirectoryCache) Update(guildID string, comp model.MemberComposition) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compositions[guildID] = comp
}

func (d *DirectoryCache) GuildCompositions(_ context.Context) (map[string]model.MemberComposition, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]model.MemberComposition, len(d.compositions))
	for guildID, comp := range d.compositions {
		out[guildID] = comp
	}
	return out, nil
}

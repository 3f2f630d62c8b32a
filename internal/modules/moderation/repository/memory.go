package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/pkg/apperror"
)

// Memory is an in-memory ModerationRepository with the same case numbering
// semantics as the postgres implementation, used by the moderation tests.
type Memory struct {
	mu    sync.Mutex
	cases []model.ModerationCase
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateCase(_ context.Context, c *model.ModerationCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxCaseID := 0
	for _, existing := range m.cases {
		if existing.GuildID == c.GuildID && existing.CaseID > maxCaseID {
			maxCaseID = existing.CaseID
		}
	}
	c.CaseID = maxCaseID + 1
	m.cases = append(m.cases, *c)
	return nil
}

func (m *Memory) ListCases(_ context.Context, guildID, userID string, limit int) ([]model.ModerationCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.ModerationCase
	for _, c := range m.cases {
		if c.GuildID != guildID {
			continue
		}
		if userID != "" && c.UserID != userID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseID > out[j].CaseID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetCase(_ context.Context, guildID string, caseID int) (*model.ModerationCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.cases {
		if c.GuildID == guildID && c.CaseID == caseID {
			copied := c
			return &copied, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (m *Memory) DeactivateCase(_ context.Context, guildID string, caseID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.cases {
		if m.cases[i].GuildID == guildID && m.cases[i].CaseID == caseID {
			m.cases[i].Active = false
			return nil
		}
	}
	return apperror.ErrNotFound
}

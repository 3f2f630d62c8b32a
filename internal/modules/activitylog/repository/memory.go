package repository

import (
	"context"
	"sync"

	"github.com/wardenbot/warden/internal/model"
)

// Memory is an in-memory ActivityLogRepository used by the gateway tests.
type Memory struct {
	mu          sync.Mutex
	MemberLogs  []model.MemberLog
	MessageLogs []model.MessageLog
	VoiceLogs   []model.VoiceLog
	RoleLogs    []model.RoleLog
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateMemberLog(_ context.Context, l *model.MemberLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MemberLogs = append(m.MemberLogs, *l)
	return nil
}

func (m *Memory) CreateMessageLog(_ context.Context, l *model.MessageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessageLogs = append(m.MessageLogs, *l)
	return nil
}

func (m *Memory) CreateVoiceLog(_ context.Context, l *model.VoiceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VoiceLogs = append(m.VoiceLogs, *l)
	return nil
}

func (m *Memory) CreateRoleLog(_ context.Context, l *model.RoleLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RoleLogs = append(m.RoleLogs, *l)
	return nil
}

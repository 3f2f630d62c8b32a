package repository

import (
	"context"

	"github.com/wardenbot/warden/internal/model"
	"gorm.io/gorm"
)

// ActivityLogRepository is the append-only event log writer. The analytics
// read side aggregates over these rows; nothing updates them after insert.
type ActivityLogRepository interface {
	CreateMemberLog(ctx context.Context, l *model.MemberLog) error
	CreateMessageLog(ctx context.Context, l *model.MessageLog) error
	CreateVoiceLog(ctx context.Context, l *model.VoiceLog) error
	CreateRoleLog(ctx context.Context, l *model.RoleLog) error
}

type activityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) CreateMemberLog(ctx context.Context, l *model.MemberLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *activityLogRepository) CreateMessageLog(ctx context.Context, l *model.MessageLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *activityLogRepository) CreateVoiceLog(ctx context.Context, l *model.VoiceLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *activityLogRepository) CreateRoleLog(ctx context.Context, l *model.RoleLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

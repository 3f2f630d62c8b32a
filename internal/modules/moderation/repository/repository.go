package repository

import (
	"context"

	"github.com/wardenbot/warden/internal/model"
	"gorm.io/gorm"
)

type ModerationRepository interface {
	CreateCase(ctx context.Context, c *model.ModerationCase) error
	ListCases(ctx context.Context, guildID, userID string, limit int) ([]model.ModerationCase, error)
	GetCase(ctx context.Context, guildID string, caseID int) (*model.ModerationCase, error)
	DeactivateCase(ctx context.Context, guildID string, caseID int) error
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

// CreateCase assigns the next per-guild case number and inserts the row in
// one transaction. The MAX+1 read locks the guild's newest case row so two
// concurrent actions cannot claim the same number.
func (r *moderationRepository) CreateCase(ctx context.Context, c *model.ModerationCase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxCaseID int
		err := tx.Model(&model.ModerationCase{}).
			Where("guild_id = ?", c.GuildID).
			Select("COALESCE(MAX(case_id), 0)").
			Row().Scan(&maxCaseID)
		if err != nil {
			return err
		}

		c.CaseID = maxCaseID + 1
		return tx.Create(c).Error
	})
}

func (r *moderationRepository) ListCases(ctx context.Context, guildID, userID string, limit int) ([]model.ModerationCase, error) {
	query := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("case_id DESC").
		Limit(limit)

	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var cases []model.ModerationCase
	if err := query.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *moderationRepository) GetCase(ctx context.Context, guildID string, caseID int) (*model.ModerationCase, error) {
	var c model.ModerationCase
	err := r.db.WithContext(ctx).
		Where("guild_id = ? AND case_id = ?", guildID, caseID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *moderationRepository) DeactivateCase(ctx context.Context, guildID string, caseID int) error {
	return r.db.WithContext(ctx).
		Model(&model.ModerationCase{}).
		Where("guild_id = ? AND case_id = ?", guildID, caseID).
		Update("active", false).Error
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/collector"
	"github.com/wardenbot/warden/internal/modules/moderation/dto"
	"github.com/wardenbot/warden/internal/modules/moderation/repository"
	"github.com/wardenbot/warden/pkg/apperror"
	"gorm.io/gorm"
)

const defaultCaseListLimit = 25

type ModerationService interface {
	CreateCase(ctx context.Context, req *dto.CreateCaseRequest) (*dto.CaseResponse, error)
	ListCases(ctx context.Context, guildID, userID string, limit int) ([]dto.CaseResponse, error)
	GetCase(ctx context.Context, guildID string, caseID int) (*dto.CaseResponse, error)
	ResolveCase(ctx context.Context, guildID string, caseID int) error
}

type moderationService struct {
	repo      repository.ModerationRepository
	collector *collector.Collector
	now       func() time.Time
}

func NewModerationService(repo repository.ModerationRepository, c *collector.Collector) ModerationService {
	return &moderationService{
		repo:      repo,
		collector: c,
		now:       time.Now,
	}
}

// CreateCase persists the audit record and feeds the action into the live
// analytics counters in the same call, so moderation stats never lag behind
// the case log.
func (s *moderationService) CreateCase(ctx context.Context, req *dto.CreateCaseRequest) (*dto.CaseResponse, error) {
	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	modCase := &model.ModerationCase{
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		ModeratorID: req.ModeratorID,
		Action:      req.Action,
		Reason:      reason,
		Duration:    req.Duration,
		Active:      isOngoingAction(req.Action),
		Timestamp:   s.now(),
	}

	if err := s.repo.CreateCase(ctx, modCase); err != nil {
		return nil, err
	}

	if s.collector != nil {
		s.collector.RecordModerationAction(req.GuildID, req.Action)
	}

	return toCaseResponse(modCase), nil
}

func (s *moderationService) ListCases(ctx context.Context, guildID, userID string, limit int) ([]dto.CaseResponse, error) {
	if limit <= 0 {
		limit = defaultCaseListLimit
	}

	cases, err := s.repo.ListCases(ctx, guildID, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		out = append(out, *toCaseResponse(&cases[i]))
	}
	return out, nil
}

func (s *moderationService) GetCase(ctx context.Context, guildID string, caseID int) (*dto.CaseResponse, error) {
	modCase, err := s.repo.GetCase(ctx, guildID, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return toCaseResponse(modCase), nil
}

func (s *moderationService) ResolveCase(ctx context.Context, guildID string, caseID int) error {
	return s.repo.DeactivateCase(ctx, guildID, caseID)
}

// isOngoingAction reports whether the action has a lasting effect that can be
// lifted later. Those cases start active; one-shot actions do not.
func isOngoingAction(action string) bool {
	switch action {
	case model.ModActionMute, model.ModActionBan, model.ModActionTimeout:
		return true
	}
	return false
}

func toCaseResponse(c *model.ModerationCase) *dto.CaseResponse {
	return &dto.CaseResponse{
		ID:          c.ID.String(),
		CaseID:      c.CaseID,
		GuildID:     c.GuildID,
		UserID:      c.UserID,
		ModeratorID: c.ModeratorID,
		Action:      c.Action,
		Reason:      c.Reason,
		Duration:    c.Duration,
		Active:      c.Active,
		Timestamp:   c.Timestamp,
	}
}

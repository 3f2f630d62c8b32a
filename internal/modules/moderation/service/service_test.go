package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/collector"
	"github.com/wardenbot/warden/internal/modules/moderation/dto"
	"github.com/wardenbot/warden/internal/modules/moderation/repository"
)

func newTestModeration() (*moderationService, *collector.Collector) {
	c := collector.New()
	svc := &moderationService{
		repo:      repository.NewMemory(),
		collector: c,
		now:       func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) },
	}
	return svc, c
}

func TestCreateCaseAssignsSequentialNumbers(t *testing.T) {
	svc, _ := newTestModeration()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		created, err := svc.CreateCase(ctx, &dto.CreateCaseRequest{
			GuildID: "g1", UserID: "u1", ModeratorID: "m1", Action: model.ModActionWarn,
		})
		require.NoError(t, err)
		assert.Equal(t, i, created.CaseID)
	}

	// Another guild starts its own sequence.
	other, err := svc.CreateCase(ctx, &dto.CreateCaseRequest{
		GuildID: "g2", UserID: "u1", ModeratorID: "m1", Action: model.ModActionBan,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, other.CaseID)
}

func TestCreateCaseFeedsAnalytics(t *testing.T) {
	svc, c := newTestModeration()

	_, err := svc.CreateCase(context.Background(), &dto.CreateCaseRequest{
		GuildID: "g1", UserID: "u1", ModeratorID: "m1", Action: model.ModActionBan,
	})
	require.NoError(t, err)

	delta := c.DrainGuildCounters()["g1"]
	require.NotNil(t, delta)
	assert.Equal(t, 1, delta.ModTotal)
	assert.Equal(t, 1, delta.ModActions[model.ModActionBan])
}

func TestCreateCaseDefaultsReasonAndActive(t *testing.T) {
	svc, _ := newTestModeration()
	ctx := context.Background()

	warn, err := svc.CreateCase(ctx, &dto.CreateCaseRequest{
		GuildID: "g1", UserID: "u1", ModeratorID: "m1", Action: model.ModActionWarn,
	})
	require.NoError(t, err)
	assert.Equal(t, "No reason provided", warn.Reason)
	assert.False(t, warn.Active)

	duration := "1h"
	mute, err := svc.CreateCase(ctx, &dto.CreateCaseRequest{
		GuildID: "g1", UserID: "u1", ModeratorID: "m1", Action: model.ModActionMute,
		Reason: "spamming", Duration: &duration,
	})
	require.NoError(t, err)
	assert.Equal(t, "spamming", mute.Reason)
	assert.True(t, mute.Active)
	require.NotNil(t, mute.Duration)
	assert.Equal(t, "1h", *mute.Duration)
}

func TestListCasesFiltersByUser(t *testing.T) {
	svc, _ := newTestModeration()
	ctx := context.Background()

	for _, userID := range []string{"u1", "u2", "u1"} {
		_, err := svc.CreateCase(ctx, &dto.CreateCaseRequest{
			GuildID: "g1", UserID: userID, ModeratorID: "m1", Action: model.ModActionWarn,
		})
		require.NoError(t, err)
	}

	cases, err := svc.ListCases(ctx, "g1", "u1", 0)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	// Newest first.
	assert.Greater(t, cases[0].CaseID, cases[1].CaseID)
}

func TestResolveCase(t *testing.T) {
	svc, _ := newTestModeration()
	ctx := context.Background()

	created, err := svc.CreateCase(ctx, &dto.CreateCaseRequest{
		GuildID: "g1", UserID: "u1", ModeratorID: "m1", Action: model.ModActionMute,
	})
	require.NoError(t, err)
	require.True(t, created.Active)

	require.NoError(t, svc.ResolveCase(ctx, "g1", created.CaseID))

	resolved, err := svc.GetCase(ctx, "g1", created.CaseID)
	require.NoError(t, err)
	assert.False(t, resolved.Active)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenbot/warden/internal/model"
)

func rollupSeries(totals ...int) []model.GuildRollup {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.GuildRollup, len(totals))
	for i, total := range totals {
		out[i] = model.GuildRollup{
			GuildID:      "g1",
			Date:         base.AddDate(0, 0, i),
			MembersTotal: total,
		}
	}
	return out
}

func TestLinearRegressionPerfectLine(t *testing.T) {
	slope, intercept, r2 := linearRegression([]float64{100, 102, 104, 106, 108, 110, 112})

	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 100.0, intercept, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestLinearRegressionFlatSeries(t *testing.T) {
	slope, _, r2 := linearRegression([]float64{50, 50, 50, 50, 50, 50, 50})

	assert.InDelta(t, 0.0, slope, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestBuildPredictionGrowingTrend(t *testing.T) {
	p := buildPrediction(rollupSeries(100, 102, 104, 106, 108, 110, 112))

	assert.False(t, p.InsufficientData)
	assert.Equal(t, "growing", p.Trend)
	assert.Equal(t, "100.00", p.Confidence)
	assert.Equal(t, "2.00", p.DailyGrowth)
	assert.Len(t, p.Historical, 7)
	require.Len(t, p.Predictions, 30)
	assert.Equal(t, 1, p.Predictions[0].Day)
	assert.Equal(t, 114, p.Predictions[0].PredictedMembers)
	assert.Equal(t, 172, p.Predictions[29].PredictedMembers)
}

func TestBuildPredictionInsufficientData(t *testing.T) {
	p := buildPrediction(rollupSeries(100, 102, 104))

	assert.True(t, p.InsufficientData)
	assert.Equal(t, "0.00", p.Confidence)
	assert.Equal(t, "stable", p.Trend)
	assert.Equal(t, "0.00", p.DailyGrowth)
	assert.Empty(t, p.Predictions)
}

func TestBuildPredictionClampsAtZero(t *testing.T) {
	p := buildPrediction(rollupSeries(12, 10, 8, 6, 4, 2, 0))

	assert.Equal(t, "declining", p.Trend)
	require.Len(t, p.Predictions, 30)
	for _, day := range p.Predictions {
		assert.GreaterOrEqual(t, day.PredictedMembers, 0)
	}
	assert.Equal(t, 0, p.Predictions[5].PredictedMembers)
}

func TestBuildPredictionStableOnFlatSeries(t *testing.T) {
	p := buildPrediction(rollupSeries(80, 80, 80, 80, 80, 80, 80))

	assert.Equal(t, "stable", p.Trend)
	assert.Equal(t, "0.00", p.DailyGrowth)
	assert.Equal(t, "100.00", p.Confidence)
	assert.Equal(t, 80, p.Predictions[0].PredictedMembers)
}

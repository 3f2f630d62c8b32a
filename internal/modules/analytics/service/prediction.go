package service

import (
	"fmt"
	"math"

	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/dto"
)

const (
	predictionHistoryDays = 90
	predictionHorizonDays = 30
	predictionMinPoints   = 7
)

// linearRegression fits y = slope*x + intercept over x = 0..n-1 by ordinary
// least squares and reports R². A zero total sum of squares (perfectly flat
// series) yields R² = 1: the zero-slope line fits it exactly.
func linearRegression(ys []float64) (slope, intercept, r2 float64) {
	n := float64(len(ys))

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	slope = (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept = (sumY - slope*sumX) / n

	mean := sumY / n
	var ssTot, ssRes float64
	for i, y := range ys {
		predicted := slope*float64(i) + intercept
		ssTot += (y - mean) * (y - mean)
		ssRes += (y - predicted) * (y - predicted)
	}

	if ssTot == 0 {
		r2 = 1
		return
	}
	r2 = 1 - ssRes/ssTot
	return
}

// buildPrediction turns ordered rollups into the 30-day member forecast.
// Fewer than predictionMinPoints rollups produce the explicit
// insufficient-data result.
func buildPrediction(rollups []model.GuildRollup) *dto.GrowthPrediction {
	if len(rollups) < predictionMinPoints {
		return &dto.GrowthPrediction{
			InsufficientData: true,
			Confidence:       "0.00",
			Trend:            "stable",
			DailyGrowth:      "0.00",
		}
	}

	ys := make([]float64, len(rollups))
	historical := make([]dto.GrowthPoint, len(rollups))
	for i, r := range rollups {
		ys[i] = float64(r.MembersTotal)
		historical[i] = dto.GrowthPoint{
			Date:         r.Date,
			MemberTotal:  r.MembersTotal,
			MemberJoins:  r.MemberJoins,
			MemberLeaves: r.MemberLeaves,
		}
	}

	slope, intercept, r2 := linearRegression(ys)

	predictions := make([]dto.DayPrediction, 0, predictionHorizonDays)
	n := len(ys)
	for i := 0; i < predictionHorizonDays; i++ {
		x := float64(n + i)
		predicted := int(math.Round(slope*x + intercept))
		if predicted < 0 {
			predicted = 0
		}
		predictions = append(predictions, dto.DayPrediction{
			Day:              i + 1,
			PredictedMembers: predicted,
		})
	}

	trend := "stable"
	if slope > 0 {
		trend = "growing"
	} else if slope < 0 {
		trend = "declining"
	}

	return &dto.GrowthPrediction{
		Historical:  historical,
		Predictions: predictions,
		Confidence:  fmt.Sprintf("%.2f", r2*100),
		Trend:       trend,
		DailyGrowth: fmt.Sprintf("%.2f", slope),
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/dto"
	"github.com/wardenbot/warden/internal/modules/analytics/repository"
	"github.com/wardenbot/warden/pkg/apperror"
)

// Leaderboard metrics.
const (
	MetricMessages   = "messages"
	MetricVoice      = "voice"
	MetricEngagement = "engagement"
)

const (
	defaultWindowDays  = 30
	defaultLimit       = 10
	comprehensiveTTL   = 5 * time.Minute
	realtimeTTL        = 30 * time.Second
	topModeratorsLimit = 10
	topChannelsLimit   = 10
	comprehensiveTopN  = 20
)

// AnalyticsService is the read side of the analytics engine. All methods are
// pure reads over persisted rollups and logs; windows with missing days
// contribute zero, never an error.
type AnalyticsService interface {
	Comprehensive(ctx context.Context, guildID string, days int) (*dto.ComprehensiveAnalytics, error)
	Realtime(ctx context.Context, guildID string) (*dto.RealtimeStats, error)
	Leaderboard(ctx context.Context, guildID, metric string, days, limit int) (*dto.Leaderboard, error)
	PredictGrowth(ctx context.Context, guildID string) (*dto.GrowthPrediction, error)
	Compare(ctx context.Context, guildID string, days int) (*dto.PeriodComparison, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
	rdb  *redis.Client
	now  func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository, rdb *redis.Client) AnalyticsService {
	return &analyticsService{
		repo: repo,
		rdb:  rdb,
		now:  time.Now,
	}
}

func (s *analyticsService) Comprehensive(ctx context.Context, guildID string, days int) (*dto.ComprehensiveAnalytics, error) {
	if days <= 0 {
		days = defaultWindowDays
	}

	cacheKey := fmt.Sprintf("analytics:comprehensive:%s:%d", guildID, days)
	var cached dto.ComprehensiveAnalytics
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	now := s.now()
	start := now.AddDate(0, 0, -days)

	rollups, err := s.repo.RollupsInRange(ctx, guildID, start, now)
	if err != nil {
		return nil, err
	}

	modCounts, err := s.repo.ModerationCountsByAction(ctx, guildID, start)
	if err != nil {
		return nil, err
	}
	moderators, err := s.repo.TopModerators(ctx, guildID, start, topModeratorsLimit)
	if err != nil {
		return nil, err
	}

	channels, err := s.repo.ChannelActivity(ctx, guildID, start, topChannelsLimit)
	if err != nil {
		return nil, err
	}
	hourly, err := s.repo.HourlyHistogram(ctx, guildID, start)
	if err != nil {
		return nil, err
	}

	activities, err := s.repo.UserActivityInRange(ctx, guildID, start, now)
	if err != nil {
		return nil, err
	}

	memberEvents, err := s.repo.MemberEventsInRange(ctx, guildID, start, now)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.LatestRollup(ctx, guildID)
	if err != nil {
		return nil, err
	}

	result := &dto.ComprehensiveAnalytics{
		TimeRange:      days,
		StartDate:      start,
		EndDate:        now,
		Current:        current,
		Daily:          rollups,
		Moderation:     buildModerationStats(modCounts, moderators),
		Growth:         buildGrowthPoints(rollups),
		Voice:          sumVoice(rollups),
		Messages:       sumMessages(rollups),
		TopUsers:       rankUsers(activities, MetricMessages, comprehensiveTopN),
		Channels:       channels,
		HourlyActivity: hourly,
		Engagement:     engagementTrend(rollups),
		Retention:      computeRetention(memberEvents),
	}

	s.cacheSet(ctx, cacheKey, result, comprehensiveTTL)
	return result, nil
}

func (s *analyticsService) Realtime(ctx context.Context, guildID string) (*dto.RealtimeStats, error) {
	cacheKey := fmt.Sprintf("analytics:realtime:%s", guildID)
	var cached dto.RealtimeStats
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	now := s.now()
	counters, err := s.repo.RealtimeCounters(ctx, guildID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	result := &dto.RealtimeStats{
		Last24Hours: *counters,
		Timestamp:   now,
	}
	s.cacheSet(ctx, cacheKey, result, realtimeTTL)
	return result, nil
}

func (s *analyticsService) Leaderboard(ctx context.Context, guildID, metric string, days, limit int) (*dto.Leaderboard, error) {
	if metric == "" {
		metric = MetricMessages
	}
	switch metric {
	case MetricMessages, MetricVoice, MetricEngagement:
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard metric %q", apperror.ErrInvalidInput, metric)
	}
	if days <= 0 {
		days = defaultWindowDays
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	now := s.now()
	activities, err := s.repo.UserActivityInRange(ctx, guildID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}

	return &dto.Leaderboard{
		Type:    metric,
		Days:    days,
		Entries: rankUsers(activities, metric, limit),
	}, nil
}

func (s *analyticsService) PredictGrowth(ctx context.Context, guildID string) (*dto.GrowthPrediction, error) {
	now := s.now()
	rollups, err := s.repo.RollupsInRange(ctx, guildID, now.AddDate(0, 0, -predictionHistoryDays), now)
	if err != nil {
		return nil, err
	}
	return buildPrediction(rollups), nil
}

func (s *analyticsService) Compare(ctx context.Context, guildID string, days int) (*dto.PeriodComparison, error) {
	if days <= 0 {
		days = defaultWindowDays
	}

	now := s.now()
	currentStart := now.AddDate(0, 0, -days)
	previousStart := currentStart.AddDate(0, 0, -days)

	currentRollups, err := s.repo.RollupsInRange(ctx, guildID, currentStart, now)
	if err != nil {
		return nil, err
	}
	previousRollups, err := s.repo.RollupsInRange(ctx, guildID, previousStart, currentStart.Add(-time.Nanosecond))
	if err != nil {
		return nil, err
	}

	current := sumPeriod(currentRollups)
	previous := sumPeriod(previousRollups)

	return &dto.PeriodComparison{
		Days:     days,
		Current:  current,
		Previous: previous,
		Changes:  compareTotals(current, previous),
	}, nil
}

// rankUsers groups daily activity rows by user, sums the requested metric and
// returns the descending top slice. Equal metric values break ties on
// ascending user ID so rankings are stable.
func rankUsers(activities []model.UserActivity, metric string, limit int) []dto.LeaderboardEntry {
	type agg struct {
		entry           dto.LeaderboardEntry
		engagementSum   float64
		engagementCount int
	}

	byUser := make(map[string]*agg)
	for _, a := range activities {
		u, ok := byUser[a.UserID]
		if !ok {
			u = &agg{entry: dto.LeaderboardEntry{UserID: a.UserID}}
			byUser[a.UserID] = u
		}
		if a.Username != "" {
			u.entry.Username = a.Username
		}
		u.entry.TotalMessages += a.MessagesSent
		u.entry.TotalWords += a.WordCount
		u.entry.TotalMinutes += a.VoiceMinutes
		u.entry.TotalSessions += a.VoiceJoins
		u.engagementSum += a.EngagementScore
		u.engagementCount++
	}

	entries := make([]dto.LeaderboardEntry, 0, len(byUser))
	for _, u := range byUser {
		if u.engagementCount > 0 {
			u.entry.AvgEngagement = u.engagementSum / float64(u.engagementCount)
		}
		entries = append(entries, u.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		var vi, vj float64
		switch metric {
		case MetricVoice:
			vi, vj = float64(entries[i].TotalMinutes), float64(entries[j].TotalMinutes)
		case MetricEngagement:
			vi, vj = entries[i].AvgEngagement, entries[j].AvgEngagement
		default:
			vi, vj = float64(entries[i].TotalMessages), float64(entries[j].TotalMessages)
		}
		if vi != vj {
			return vi > vj
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// computeRetention classifies each joiner in the window as retained unless a
// leave event for the same user exists in the window. Zero joins yields a
// "0.00" rate, never a division error.
func computeRetention(events []model.MemberLog) dto.RetentionStats {
	left := make(map[string]bool)
	for _, e := range events {
		if e.Action == model.MemberActionLeave {
			left[e.UserID] = true
		}
	}

	stats := dto.RetentionStats{RetentionRate: "0.00"}
	for _, e := range events {
		if e.Action != model.MemberActionJoin {
			continue
		}
		stats.NewMembers++
		if left[e.UserID] {
			stats.Left++
		} else {
			stats.Retained++
		}
	}

	if stats.NewMembers > 0 {
		rate := float64(stats.Retained) / float64(stats.NewMembers) * 100
		stats.RetentionRate = fmt.Sprintf("%.2f", rate)
	}
	return stats
}

// engagementTrend averages the daily engagement rate and labels the movement
// of the last 7 days against the first 7, with a 10% hysteresis band so noisy
// data does not flap between labels.
func engagementTrend(rollups []model.GuildRollup) dto.EngagementSummary {
	if len(rollups) == 0 {
		return dto.EngagementSummary{Trend: "stable"}
	}

	rates := make([]float64, len(rollups))
	var sum float64
	for i, r := range rollups {
		rates[i] = r.EngagementRate
		sum += r.EngagementRate
	}

	head := rates
	if len(head) > 7 {
		head = rates[:7]
	}
	tail := rates
	if len(tail) > 7 {
		tail = rates[len(rates)-7:]
	}

	older := mean(head)
	recent := mean(tail)

	trend := "stable"
	if recent > older*1.1 {
		trend = "increasing"
	} else if recent < older*0.9 {
		trend = "decreasing"
	}

	return dto.EngagementSummary{
		AvgEngagementRate: sum / float64(len(rates)),
		Trend:             trend,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sumPeriod(rollups []model.GuildRollup) dto.PeriodTotals {
	var totals dto.PeriodTotals
	for _, r := range rollups {
		totals.Messages += r.MessagesTotal
		totals.Joins += r.MemberJoins
		totals.Leaves += r.MemberLeaves
		totals.ModerationActions += r.ModTotal
		totals.VoiceMinutes += r.VoiceMinutes
	}
	return totals
}

// compareTotals reports the movement of every numeric field between two
// periods. A zero previous value reports "0.00" percent; direction always
// follows the sign of the absolute delta.
func compareTotals(current, previous dto.PeriodTotals) map[string]dto.ChangeStat {
	return map[string]dto.ChangeStat{
		"messages":          changeStat(current.Messages, previous.Messages),
		"joins":             changeStat(current.Joins, previous.Joins),
		"leaves":            changeStat(current.Leaves, previous.Leaves),
		"moderationActions": changeStat(current.ModerationActions, previous.ModerationActions),
		"voiceMinutes":      changeStat(current.VoiceMinutes, previous.VoiceMinutes),
	}
}

func changeStat(current, previous int) dto.ChangeStat {
	change := current - previous

	percent := "0.00"
	if previous != 0 {
		percent = fmt.Sprintf("%.2f", float64(change)/float64(previous)*100)
	}

	direction := "stable"
	if change > 0 {
		direction = "up"
	} else if change < 0 {
		direction = "down"
	}

	return dto.ChangeStat{Absolute: change, Percent: percent, Direction: direction}
}

func buildModerationStats(counts map[string]int, moderators []repository.ModeratorCount) dto.ModerationStats {
	stats := dto.ModerationStats{ByAction: counts}
	if stats.ByAction == nil {
		stats.ByAction = map[string]int{}
	}
	for _, m := range moderators {
		stats.TopModerators = append(stats.TopModerators, dto.ModeratorStat{
			ModeratorID: m.ModeratorID,
			Actions:     m.Actions,
		})
	}
	return stats
}

func buildGrowthPoints(rollups []model.GuildRollup) []dto.GrowthPoint {
	points := make([]dto.GrowthPoint, 0, len(rollups))
	for _, r := range rollups {
		points = append(points, dto.GrowthPoint{
			Date:         r.Date,
			MemberTotal:  r.MembersTotal,
			MemberJoins:  r.MemberJoins,
			MemberLeaves: r.MemberLeaves,
		})
	}
	return points
}

func sumVoice(rollups []model.GuildRollup) dto.VoiceSummary {
	var v dto.VoiceSummary
	for _, r := range rollups {
		v.TotalMinutes += r.VoiceMinutes
		v.Sessions += r.VoiceJoins
		v.UniqueUsers += r.VoiceUniqueUsers
	}
	return v
}

func sumMessages(rollups []model.GuildRollup) dto.MessageSummary {
	var m dto.MessageSummary
	for _, r := range rollups {
		m.Sent += r.MessagesTotal
		m.Edited += r.MessagesEdited
		m.Deleted += r.MessagesDeleted
	}
	return m
}

func (s *analyticsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false
	}
	return true
}

func (s *analyticsService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
}

package collector

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wardenbot/warden/internal/model"
	"github.com/wardenbot/warden/internal/modules/analytics/repository"
)

// Directory reports the current member composition of every guild the bot
// can see. Implemented by the gateway adapter; nil when no gateway is
// attached, in which case snapshots and engagement rates are skipped.
type Directory interface {
	GuildCompositions(ctx context.Context) (map[string]model.MemberComposition, error)
}

// Flusher owns the two analytics persistence schedules: the hourly counter
// flush and the midnight member-count snapshot. A failed merge is logged and
// the drained delta is dropped; the next cycle starts fresh. This is a known
// lossy-on-failure tradeoff that keeps the collector memory bounded.
type Flusher struct {
	collector *Collector
	repo      repository.AnalyticsRepository
	directory Directory

	loc      *time.Location
	interval time.Duration
	timeout  time.Duration

	cron *cron.Cron
	stop chan struct{}
	now  func() time.Time
}

func NewFlusher(c *Collector, repo repository.AnalyticsRepository, directory Directory, loc *time.Location, interval, timeout time.Duration) *Flusher {
	if loc == nil {
		loc = time.UTC
	}
	return &Flusher{
		collector: c,
		repo:      repo,
		directory: directory,
		loc:       loc,
		interval:  interval,
		timeout:   timeout,
		stop:      make(chan struct{}),
		now:       time.Now,
	}
}

// Start arms both schedules. The midnight snapshot runs in the configured
// timezone so day bucketing stays deterministic across deployments.
func (f *Flusher) Start() {
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				f.FlushHourly(context.Background())
			case <-f.stop:
				return
			}
		}
	}()

	f.cron = cron.New(cron.WithLocation(f.loc))
	_, err := f.cron.AddFunc("0 0 * * *", func() {
		f.SnapshotDaily(context.Background())
	})
	if err != nil {
		log.Printf("⚠️ Failed to schedule midnight snapshot: %v", err)
	}
	f.cron.Start()

	log.Printf("📊 Analytics flusher started (flush every %s, snapshots at midnight %s)", f.interval, f.loc)
}

func (f *Flusher) Stop() {
	close(f.stop)
	if f.cron != nil {
		f.cron.Stop()
	}
}

// DayStart truncates t to midnight in the reference timezone.
func (f *Flusher) DayStart(t time.Time) time.Time {
	t = t.In(f.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, f.loc)
}

// FlushHourly drains the accumulator and merges both counter kinds into the
// current day's rollups. The drain happens before any I/O, so a slow or
// failing persistence call can never stall ingestion into the next window.
func (f *Flusher) FlushHourly(ctx context.Context) {
	guilds := f.collector.DrainGuildCounters()
	users := f.collector.DrainUserCounters()
	if len(guilds) == 0 && len(users) == 0 {
		return
	}

	day := f.DayStart(f.now())

	totals := f.memberTotals(ctx)
	topUsers := rankTopUsers(users)

	saved := 0
	for guildID, delta := range guilds {
		delta.TopUsers = topUsers[guildID]
		if total := totals[guildID]; total > 0 {
			delta.EngagementRate = float64(delta.ActiveUsers) / float64(total)
		}

		mergeCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.repo.MergeGuildCounters(mergeCtx, guildID, day, delta)
		cancel()
		if err != nil {
			log.Printf("❌ Dropping guild counters for %s: %v", guildID, err)
			continue
		}
		saved++
	}

	savedUsers := 0
	for key, delta := range users {
		mergeCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.repo.MergeUserCounters(mergeCtx, key.GuildID, key.UserID, day, delta)
		cancel()
		if err != nil {
			log.Printf("❌ Dropping user counters for %s/%s: %v", key.GuildID, key.UserID, err)
			continue
		}
		savedUsers++
	}

	log.Printf("✅ Analytics saved (%d guilds, %d users)", saved, savedUsers)
}

// SnapshotDaily replace-upserts the member composition of every known guild
// into today's rollup. It never touches counter columns.
func (f *Flusher) SnapshotDaily(ctx context.Context) {
	if f.directory == nil {
		return
	}

	compositions, err := f.directory.GuildCompositions(ctx)
	if err != nil {
		log.Printf("❌ Skipping daily snapshot: %v", err)
		return
	}

	day := f.DayStart(f.now())
	for guildID, comp := range compositions {
		snapCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.repo.ReplaceMemberSnapshot(snapCtx, guildID, day, comp)
		cancel()
		if err != nil {
			log.Printf("❌ Snapshot failed for %s: %v", guildID, err)
		}
	}

	log.Printf("📊 Daily member snapshot saved for %d guilds", len(compositions))
}

func (f *Flusher) memberTotals(ctx context.Context) map[string]int {
	if f.directory == nil {
		return nil
	}
	compositions, err := f.directory.GuildCompositions(ctx)
	if err != nil {
		return nil
	}
	totals := make(map[string]int, len(compositions))
	for guildID, comp := range compositions {
		totals[guildID] = comp.Total
	}
	return totals
}

// rankTopUsers builds each guild's top-20 user list from the drained user
// deltas of the same window.
func rankTopUsers(users map[model.UserKey]*model.UserDelta) map[string][]model.TopUser {
	perGuild := make(map[string][]model.TopUser)
	for key, d := range users {
		perGuild[key.GuildID] = append(perGuild[key.GuildID], model.TopUser{
			UserID:       key.UserID,
			Username:     d.Username,
			MessageCount: d.MessagesSent,
			VoiceMinutes: d.VoiceMinutes,
		})
	}
	for guildID, list := range perGuild {
		sort.Slice(list, func(i, j int) bool {
			if list[i].MessageCount != list[j].MessageCount {
				return list[i].MessageCount > list[j].MessageCount
			}
			return list[i].UserID < list[j].UserID
		})
		if len(list) > 20 {
			list = list[:20]
		}
		perGuild[guildID] = list
	}
	return perGuild
}

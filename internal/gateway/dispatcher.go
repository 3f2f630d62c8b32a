package gateway

import (
	"context"
	"time"

	"github.com/wardenbot/warden/internal/model"
	activitylogRepository "github.com/wardenbot/warden/internal/modules/activitylog/repository"
	"github.com/wardenbot/warden/internal/modules/analytics/collector"
)

// Dispatcher folds bot gateway events into the analytics collector and the
// append-only activity logs. Counter updates always happen, even when the log
// write fails; the collector is the source for rollups, the logs only feed
// the drill-down queries.
type Dispatcher struct {
	collector *collector.Collector
	logs      activitylogRepository.ActivityLogRepository
	directory *DirectoryCache
	voice     *voiceTracker
	now       func() time.Time
}

func NewDispatcher(c *collector.Collector, logs activitylogRepository.ActivityLogRepository, directory *DirectoryCache) *Dispatcher {
	return &Dispatcher{
		collector: c,
		logs:      logs,
		directory: directory,
		voice:     newVoiceTracker(),
		now:       time.Now,
	}
}

func (d *Dispatcher) HandleMessageCreate(ctx context.Context, ev *MessageCreateEvent) error {
	if ev.Bot {
		d.collector.RecordBotMessage(ev.GuildID, ev.ChannelID)
		return nil
	}

	d.collector.RecordMessage(ev.GuildID, ev.AuthorID, ev.AuthorTag, ev.ChannelID, ev.ContentLength, ev.WordCount)
	if ev.MentionUsers > 0 || ev.MentionRoles > 0 || ev.MentionEveryone {
		d.collector.RecordMentions(ev.GuildID, ev.AuthorID, ev.MentionUsers, ev.MentionRoles, ev.MentionEveryone)
	}

	return d.logs.CreateMessageLog(ctx, &model.MessageLog{
		GuildID:     ev.GuildID,
		MessageID:   ev.MessageID,
		ChannelID:   ev.ChannelID,
		ChannelName: ev.ChannelName,
		AuthorID:    ev.AuthorID,
		AuthorTag:   ev.AuthorTag,
		Action:      model.MessageActionCreated,
		Timestamp:   d.now(),
	})
}

func (d *Dispatcher) HandleMessageUpdate(ctx context.Context, ev *MessageUpdateEvent) error {
	if ev.Bot {
		return nil
	}

	d.collector.RecordMessageEdit(ev.GuildID, ev.AuthorID)

	return d.logs.CreateMessageLog(ctx, &model.MessageLog{
		GuildID:     ev.GuildID,
		MessageID:   ev.MessageID,
		ChannelID:   ev.ChannelID,
		ChannelName: ev.ChannelName,
		AuthorID:    ev.AuthorID,
		AuthorTag:   ev.AuthorTag,
		Action:      model.MessageActionEdited,
		Timestamp:   d.now(),
	})
}

func (d *Dispatcher) HandleMessageDelete(ctx context.Context, ev *MessageDeleteEvent) error {
	d.collector.RecordMessageDelete(ev.GuildID, ev.AuthorID)

	return d.logs.CreateMessageLog(ctx, &model.MessageLog{
		GuildID:     ev.GuildID,
		MessageID:   ev.MessageID,
		ChannelID:   ev.ChannelID,
		ChannelName: ev.ChannelName,
		AuthorID:    ev.AuthorID,
		AuthorTag:   ev.AuthorTag,
		Action:      model.MessageActionDeleted,
		Timestamp:   d.now(),
	})
}

// HandleVoiceState derives the join/leave/move/mute/deafen action from the
// channel transition and keeps the open-session table current.
func (d *Dispatcher) HandleVoiceState(ctx context.Context, ev *VoiceStateEvent) error {
	now := d.now()

	switch {
	case ev.OldChannelID == "" && ev.NewChannelID != "":
		d.voice.join(ev.GuildID, ev.UserID, ev.NewChannelID, ev.SelfMute, ev.SelfDeaf, now)
		return d.logVoice(ctx, ev, model.VoiceActionJoin, 0, now)

	case ev.OldChannelID != "" && ev.NewChannelID == "":
		minutes, seconds, tracked := d.voice.leave(ev.GuildID, ev.UserID, now)
		if tracked {
			d.collector.RecordVoiceSession(ev.GuildID, ev.UserID, ev.UserTag, minutes)
		}
		return d.logVoice(ctx, ev, model.VoiceActionLeave, seconds, now)

	case ev.OldChannelID != ev.NewChannelID:
		d.voice.move(ev.GuildID, ev.UserID, ev.NewChannelID)
		return d.logVoice(ctx, ev, model.VoiceActionMove, 0, now)

	default:
		nowMuted, nowDeafened := d.voice.updateFlags(ev.GuildID, ev.UserID, ev.SelfMute, ev.SelfDeaf)
		if nowMuted {
			d.collector.RecordVoiceMute(ev.GuildID, ev.UserID)
			if err := d.logVoice(ctx, ev, model.VoiceActionMute, 0, now); err != nil {
				return err
			}
		}
		if nowDeafened {
			d.collector.RecordVoiceDeafen(ev.GuildID, ev.UserID)
			return d.logVoice(ctx, ev, model.VoiceActionDeafen, 0, now)
		}
		return nil
	}
}

func (d *Dispatcher) logVoice(ctx context.Context, ev *VoiceStateEvent, action string, seconds int, at time.Time) error {
	return d.logs.CreateVoiceLog(ctx, &model.VoiceLog{
		GuildID:      ev.GuildID,
		UserID:       ev.UserID,
		UserTag:      ev.UserTag,
		Action:       action,
		OldChannelID: ev.OldChannelID,
		NewChannelID: ev.NewChannelID,
		Duration:     seconds,
		Timestamp:    at,
	})
}

func (d *Dispatcher) HandleMember(ctx context.Context, ev *MemberEvent) error {
	d.collector.RecordMemberChange(ev.GuildID, ev.Action)

	return d.logs.CreateMemberLog(ctx, &model.MemberLog{
		GuildID:     ev.GuildID,
		UserID:      ev.UserID,
		UserTag:     ev.UserTag,
		Action:      ev.Action,
		MemberCount: ev.MemberCount,
		Timestamp:   d.now(),
	})
}

func (d *Dispatcher) HandleReaction(_ context.Context, ev *ReactionEvent) error {
	d.collector.RecordReaction(ev.GuildID, ev.UserID, ev.MessageAuthorID, ev.Emoji)
	return nil
}

func (d *Dispatcher) HandleCommand(_ context.Context, ev *CommandEvent) error {
	d.collector.RecordCommandUse(ev.GuildID, ev.Command)
	return nil
}

func (d *Dispatcher) HandleRole(ctx context.Context, ev *RoleEvent) error {
	d.collector.RecordRoleChange(ev.GuildID, ev.Added)

	return d.logs.CreateRoleLog(ctx, &model.RoleLog{
		GuildID:   ev.GuildID,
		UserID:    ev.UserID,
		RoleID:    ev.RoleID,
		RoleName:  ev.RoleName,
		Added:     ev.Added,
		Timestamp: d.now(),
	})
}

func (d *Dispatcher) HandleDirectoryUpdate(_ context.Context, ev *DirectoryUpdate) {
	d.directory.Update(ev.GuildID, model.MemberComposition{
		Total:  ev.Total,
		Online: ev.Online,
		Bots:   ev.Bots,
		Humans: ev.Humans,
	})
}

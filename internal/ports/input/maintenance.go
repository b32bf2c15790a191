package input

import (
	"context"

	"eventboard/internal/domain/entities"
)

// SweepReport counts what one maintenance pass over a guild repaired.
type SweepReport struct {
	Checked       int
	Recreated     int
	Deleted       int
	Rerendered    int
	RemindersSent int
	MembersPruned int
	Failures      int
}

func (r *SweepReport) Add(o SweepReport) {
	r.Checked += o.Checked
	r.Recreated += o.Recreated
	r.Deleted += o.Deleted
	r.Rerendered += o.Rerendered
	r.RemindersSent += o.RemindersSent
	r.MembersPruned += o.MembersPruned
	r.Failures += o.Failures
}

type MaintenanceUseCase interface {
	Sweep(ctx context.Context, guildID string) (SweepReport, error)
	SweepAll(ctx context.Context) (SweepReport, error)
	// Reload rebuilds the cache from the store and returns how many guilds had drifted.
	Reload(ctx context.Context) (int, error)
}

type SettingsUseCase interface {
	Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error)
	SetEventChannel(ctx context.Context, guildID, memberID, channelID string) error
	SetAutoDelete(ctx context.Context, guildID, memberID string, minutes int) error
	SetReminder(ctx context.Context, guildID, memberID string, minutes int) error
	AddMentionRole(ctx context.Context, guildID, memberID, roleID string) error
	RemoveMentionRole(ctx context.Context, guildID, memberID, roleID string) error
	SetMentionAll(ctx context.Context, guildID, memberID string, enabled bool) error
	IsEventChannel(ctx context.Context, guildID, channelID string) bool
}

package output

import (
	"context"

	"eventboard/internal/domain/entities"
)

// EventStore is the durable per-guild document store. The Update functions
// run fn with exclusive access to the guild's document; returning an error
// from fn discards every change made in it.
type EventStore interface {
	Guilds(ctx context.Context) ([]string, error)
	Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error)
	UpdateSettings(ctx context.Context, guildID string, fn func(*entities.GuildSettings) error) error
	// AllocateEventID returns the guild's next event id and increments the counter.
	AllocateEventID(ctx context.Context, guildID string) (int64, error)
	// Events returns the guild's events keyed by post id.
	Events(ctx context.Context, guildID string) (map[string]*entities.Event, error)
	UpdateEvents(ctx context.Context, guildID string, fn func(events map[string]*entities.Event) error) error
}

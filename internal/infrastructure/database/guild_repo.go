package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/output"
)

var _ output.EventStore = (*GuildRepository)(nil)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// GuildRepository stores one guild_settings row per guild, events included
// as a JSONB document keyed by post id.
type GuildRepository struct {
	db DB
}

func NewGuildRepository(db DB) *GuildRepository {
	return &GuildRepository{db: db}
}

const (
	ensureGuildSQL = `INSERT INTO guild_settings (guild_id) VALUES ($1) ON CONFLICT (guild_id) DO NOTHING`

	selectSettingsSQL = `SELECT event_channel_id, auto_delete_minutes, reminder_minutes, mention_roles, mention_all, next_event_id
FROM guild_settings WHERE guild_id = $1`

	updateSettingsSQL = `UPDATE guild_settings
SET event_channel_id = $2, auto_delete_minutes = $3, reminder_minutes = $4, mention_roles = $5, mention_all = $6, updated_at = now()
WHERE guild_id = $1`

	allocateIDSQL = `INSERT INTO guild_settings (guild_id, next_event_id) VALUES ($1, 2)
ON CONFLICT (guild_id) DO UPDATE SET next_event_id = guild_settings.next_event_id + 1, updated_at = now()
RETURNING next_event_id - 1`

	selectEventsSQL = `SELECT events FROM guild_settings WHERE guild_id = $1`

	updateEventsSQL = `UPDATE guild_settings SET events = $2, updated_at = now() WHERE guild_id = $1`
)

func (r *GuildRepository) Guilds(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT guild_id FROM guild_settings ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	guilds, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	return guilds, nil
}

// Settings returns the guild's settings, or the defaults for a guild never seen.
func (r *GuildRepository) Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	g, err := scanSettings(r.db.QueryRow(ctx, selectSettingsSQL, guildID), guildID)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.NewGuildSettings(guildID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return g, nil
}

func (r *GuildRepository) UpdateSettings(ctx context.Context, guildID string, fn func(*entities.GuildSettings) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ensureGuildSQL, guildID); err != nil {
			return fmt.Errorf("ensure guild: %w", err)
		}
		g, err := scanSettings(tx.QueryRow(ctx, selectSettingsSQL+" FOR UPDATE", guildID), guildID)
		if err != nil {
			return fmt.Errorf("lock settings: %w", err)
		}
		if err := fn(g); err != nil {
			return err
		}
		roles := g.MentionRoles
		if roles == nil {
			roles = []string{}
		}
		if _, err := tx.Exec(ctx, updateSettingsSQL, guildID, g.EventChannelID, g.AutoDeleteMinutes, g.ReminderMinutes, roles, g.MentionAll); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return nil
	})
}

// AllocateEventID increments the guild counter in a single statement and
// returns the value it had before.
func (r *GuildRepository) AllocateEventID(ctx context.Context, guildID string) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, allocateIDSQL, guildID).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate event id: %w", err)
	}
	return id, nil
}

func (r *GuildRepository) Events(ctx context.Context, guildID string) (map[string]*entities.Event, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, selectEventsSQL, guildID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]*entities.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	return decodeEvents(guildID, raw)
}

// UpdateEvents runs fn on the guild's events while holding the row lock.
// An error from fn rolls the transaction back and is returned unchanged.
func (r *GuildRepository) UpdateEvents(ctx context.Context, guildID string, fn func(map[string]*entities.Event) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ensureGuildSQL, guildID); err != nil {
			return fmt.Errorf("ensure guild: %w", err)
		}
		var raw []byte
		if err := tx.QueryRow(ctx, selectEventsSQL+" FOR UPDATE", guildID).Scan(&raw); err != nil {
			return fmt.Errorf("lock events: %w", err)
		}
		events, err := decodeEvents(guildID, raw)
		if err != nil {
			return err
		}
		if err := fn(events); err != nil {
			return err
		}
		doc, err := encodeEvents(events)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, updateEventsSQL, guildID, doc); err != nil {
			return fmt.Errorf("update events: %w", err)
		}
		return nil
	})
}

func scanSettings(row pgx.Row, guildID string) (*entities.GuildSettings, error) {
	g := &entities.GuildSettings{GuildID: guildID}
	err := row.Scan(&g.EventChannelID, &g.AutoDeleteMinutes, &g.ReminderMinutes, &g.MentionRoles, &g.MentionAll, &g.NextEventID)
	if err != nil {
		return nil, err
	}
	if g.MentionRoles == nil {
		g.MentionRoles = []string{}
	}
	return g, nil
}

package entities

import (
	"slices"
	"time"
)

// GuildSettings holds the per-guild configuration of the event board.
type GuildSettings struct {
	GuildID           string
	EventChannelID    string // empty = not configured
	AutoDeleteMinutes int    // negative disables auto-delete
	ReminderMinutes   int    // negative disables reminders
	MentionRoles      []string
	MentionAll        bool
	NextEventID       int64
}

// NewGuildSettings returns the defaults used for a guild seen for the first time.
func NewGuildSettings(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID:           guildID,
		AutoDeleteMinutes: -1,
		ReminderMinutes:   -1,
		MentionRoles:      []string{},
		NextEventID:       1,
	}
}

func (g *GuildSettings) IsConfigured() bool {
	return g != nil && g.EventChannelID != ""
}

// AutoDeleteOffset returns the delay after start before an event is removed.
func (g *GuildSettings) AutoDeleteOffset() (time.Duration, bool) {
	if g.AutoDeleteMinutes < 0 {
		return 0, false
	}
	return time.Duration(g.AutoDeleteMinutes) * time.Minute, true
}

// ReminderLead returns how long before start the reminder goes out.
func (g *GuildSettings) ReminderLead() (time.Duration, bool) {
	if g.ReminderMinutes < 0 {
		return 0, false
	}
	return time.Duration(g.ReminderMinutes) * time.Minute, true
}

// HasMentionTargets reports whether the creation wizard should offer a mention step.
func (g *GuildSettings) HasMentionTargets() bool {
	return len(g.MentionRoles) > 0 || g.MentionAll
}

// AddMentionRole adds roleID to the mentionable set; false if already present.
func (g *GuildSettings) AddMentionRole(roleID string) bool {
	if roleID == "" || slices.Contains(g.MentionRoles, roleID) {
		return false
	}
	g.MentionRoles = append(g.MentionRoles, roleID)
	return true
}

func (g *GuildSettings) RemoveMentionRole(roleID string) bool {
	i := slices.Index(g.MentionRoles, roleID)
	if i < 0 {
		return false
	}
	g.MentionRoles = slices.Delete(g.MentionRoles, i, i+1)
	return true
}

func (g *GuildSettings) Clone() *GuildSettings {
	c := *g
	c.MentionRoles = slices.Clone(g.MentionRoles)
	return &c
}

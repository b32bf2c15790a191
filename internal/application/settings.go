package application

import (
	"context"
	"fmt"
	"log"
	"sync"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/input"
	"eventboard/internal/ports/output"
)

var _ input.SettingsUseCase = (*SettingsService)(nil)

// SettingsService changes guild settings on behalf of moderators. It keeps
// the event channel of each guild in memory; every write goes through update.
type SettingsService struct {
	store   output.EventStore
	members output.Members

	mu       sync.RWMutex
	channels map[string]string
}

func NewSettingsService(store output.EventStore, members output.Members) *SettingsService {
	return &SettingsService{store: store, members: members, channels: make(map[string]string)}
}

func (s *SettingsService) Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	return s.store.Settings(ctx, guildID)
}

// IsEventChannel reports whether channelID is the guild's event channel.
// Lookup errors count as "no".
func (s *SettingsService) IsEventChannel(ctx context.Context, guildID, channelID string) bool {
	s.mu.RLock()
	channel, ok := s.channels[guildID]
	s.mu.RUnlock()
	if !ok {
		settings, err := s.store.Settings(ctx, guildID)
		if err != nil {
			log.Printf("⚠️ Lecture des paramètres (guild=%s): %v", guildID, err)
			return false
		}
		channel = settings.EventChannelID
		s.mu.Lock()
		s.channels[guildID] = channel
		s.mu.Unlock()
	}
	return channel != "" && channel == channelID
}

func (s *SettingsService) SetEventChannel(ctx context.Context, guildID, memberID, channelID string) error {
	if channelID == "" {
		return domain.ErrValidationFailed
	}
	return s.update(ctx, guildID, memberID, func(g *entities.GuildSettings) {
		g.EventChannelID = channelID
	})
}

func (s *SettingsService) SetAutoDelete(ctx context.Context, guildID, memberID string, minutes int) error {
	return s.update(ctx, guildID, memberID, func(g *entities.GuildSettings) {
		g.AutoDeleteMinutes = clampDisabled(minutes)
	})
}

func (s *SettingsService) SetReminder(ctx context.Context, guildID, memberID string, minutes int) error {
	return s.update(ctx, guildID, memberID, func(g *entities.GuildSettings) {
		g.ReminderMinutes = clampDisabled(minutes)
	})
}

func (s *SettingsService) AddMentionRole(ctx context.Context, guildID, memberID, roleID string) error {
	if roleID == "" {
		return domain.ErrInvalidRole
	}
	return s.update(ctx, guildID, memberID, func(g *entities.GuildSettings) {
		g.AddMentionRole(roleID)
	})
}

func (s *SettingsService) RemoveMentionRole(ctx context.Context, guildID, memberID, roleID string) error {
	return s.update(ctx, guildID, memberID, func(g *entities.GuildSettings) {
		g.RemoveMentionRole(roleID)
	})
}

func (s *SettingsService) SetMentionAll(ctx context.Context, guildID, memberID string, enabled bool) error {
	return s.update(ctx, guildID, memberID, func(g *entities.GuildSettings) {
		g.MentionAll = enabled
	})
}

func (s *SettingsService) update(ctx context.Context, guildID, memberID string, fn func(*entities.GuildSettings)) error {
	allowed, err := s.members.IsModerator(ctx, guildID, memberID)
	if err != nil {
		return fmt.Errorf("check moderator: %w", err)
	}
	if !allowed {
		return domain.ErrUnauthorized
	}
	var channel string
	err = s.store.UpdateSettings(ctx, guildID, func(g *entities.GuildSettings) error {
		fn(g)
		channel = g.EventChannelID
		return nil
	})
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	s.mu.Lock()
	s.channels[guildID] = channel
	s.mu.Unlock()
	log.Printf("✅ Paramètres mis à jour (guild=%s, par %s)", guildID, memberID)
	return nil
}

// clampDisabled folds every negative value onto -1.
func clampDisabled(minutes int) int {
	if minutes < 0 {
		return -1
	}
	return minutes
}

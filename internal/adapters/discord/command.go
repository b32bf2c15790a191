package discord

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/application"
	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/input"
	pkgdiscord "eventboard/pkg/discord"
)

func (h *Handler) runCommand(ctx context.Context, m *discordgo.Message, fields []string) {
	if strings.EqualFold(fields[0], "eventboard") {
		if len(fields) > 1 && strings.EqualFold(fields[1], "create") {
			h.handleCreate(ctx, m)
		}
		return
	}
	h.handleSettings(ctx, m, fields[1:])
}

func (h *Handler) handleCreate(ctx context.Context, m *discordgo.Message) {
	if err := h.api.ChannelMessageDelete(m.ChannelID, m.ID); err != nil && !pkgdiscord.IsMessageGone(err) {
		log.Printf("⚠️ Suppression de la commande %s: %v", m.ID, err)
	}
	_, err := h.lifecycle.CreateEvent(ctx, input.CreateRequest{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
	})
	if err != nil && !domain.IsUserFacing(err) && !errors.Is(err, context.Canceled) {
		log.Printf("❌ Erreur lors de la création de l'événement (guild=%s, user=%s): %v", m.GuildID, m.Author.ID, err)
	}
}

func (h *Handler) handleSettings(ctx context.Context, m *discordgo.Message, args []string) {
	if len(args) == 0 {
		h.reply(m, h.t("settings.usage", nil))
		return
	}
	guildID, author := m.GuildID, m.Author.ID

	switch strings.ToLower(args[0]) {
	case "channel":
		if err := h.settings.SetEventChannel(ctx, guildID, author, m.ChannelID); err != nil {
			h.replyError(m, err)
			return
		}
		h.reply(m, h.t("settings.channel_set", map[string]any{"Channel": "<#" + m.ChannelID + ">"}))
		if err := h.api.ChannelMessageDelete(m.ChannelID, m.ID); err != nil && !pkgdiscord.IsMessageGone(err) {
			log.Printf("⚠️ Suppression de la commande %s: %v", m.ID, err)
		}

	case "autodelete", "reminder":
		if len(args) < 2 {
			h.reply(m, h.t("settings.usage", nil))
			return
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			h.reply(m, h.t("settings.invalid_number", nil))
			return
		}
		set, on, off := h.settings.SetAutoDelete, "settings.autodelete_set", "settings.autodelete_off"
		if strings.EqualFold(args[0], "reminder") {
			set, on, off = h.settings.SetReminder, "settings.reminder_set", "settings.reminder_off"
		}
		if err := set(ctx, guildID, author, minutes); err != nil {
			h.replyError(m, err)
			return
		}
		if minutes < 0 {
			h.reply(m, h.t(off, nil))
			return
		}
		h.reply(m, h.t(on, map[string]any{"Minutes": minutes}))

	case "mentionrole":
		if len(args) < 3 {
			h.reply(m, h.t("settings.usage", nil))
			return
		}
		roleID := parseRole(args[2])
		data := map[string]any{"Role": application.MentionText(guildID, roleID)}
		var err error
		switch strings.ToLower(args[1]) {
		case "add":
			err = h.settings.AddMentionRole(ctx, guildID, author, roleID)
			if err == nil {
				h.reply(m, h.t("settings.role_added", data))
			}
		case "remove":
			err = h.settings.RemoveMentionRole(ctx, guildID, author, roleID)
			if err == nil {
				h.reply(m, h.t("settings.role_removed", data))
			}
		default:
			h.reply(m, h.t("settings.usage", nil))
			return
		}
		if err != nil {
			h.replyError(m, err)
		}

	case "mentionall":
		if len(args) < 2 {
			h.reply(m, h.t("settings.usage", nil))
			return
		}
		enabled, ok := parseSwitch(args[1])
		if !ok {
			h.reply(m, h.t("settings.usage", nil))
			return
		}
		if err := h.settings.SetMentionAll(ctx, guildID, author, enabled); err != nil {
			h.replyError(m, err)
			return
		}
		if enabled {
			h.reply(m, h.t("settings.mentionall_on", nil))
		} else {
			h.reply(m, h.t("settings.mentionall_off", nil))
		}

	case "show":
		settings, err := h.settings.Settings(ctx, guildID)
		if err != nil {
			h.replyError(m, err)
			return
		}
		h.reply(m, h.describeSettings(settings))

	default:
		h.reply(m, h.t("settings.usage", nil))
	}
}

func (h *Handler) describeSettings(g *entities.GuildSettings) string {
	channel := h.t("settings.none", nil)
	if g.IsConfigured() {
		channel = "<#" + g.EventChannelID + ">"
	}
	roles := h.t("settings.none", nil)
	if len(g.MentionRoles) > 0 {
		mentions := make([]string, len(g.MentionRoles))
		for i, id := range g.MentionRoles {
			mentions[i] = application.MentionText(g.GuildID, id)
		}
		roles = strings.Join(mentions, ", ")
	}
	mentionAll := h.t("settings.disabled", nil)
	if g.MentionAll {
		mentionAll = "✅"
	}
	return h.t("settings.show", map[string]any{
		"Channel":    channel,
		"AutoDelete": h.minutesOrDisabled(g.AutoDeleteMinutes),
		"Reminder":   h.minutesOrDisabled(g.ReminderMinutes),
		"Roles":      roles,
		"MentionAll": mentionAll,
	})
}

func (h *Handler) minutesOrDisabled(minutes int) string {
	if minutes < 0 {
		return h.t("settings.disabled", nil)
	}
	return h.t("settings.minutes", map[string]any{"Minutes": minutes})
}

func (h *Handler) reply(m *discordgo.Message, content string) {
	if _, err := h.api.ChannelMessageSend(m.ChannelID, content); err != nil {
		log.Printf("⚠️ Réponse à la commande (channel=%s): %v", m.ChannelID, err)
	}
}

func (h *Handler) replyError(m *discordgo.Message, err error) {
	code := domain.Code(err)
	if code == "" {
		log.Printf("❌ Commande eventboardset (guild=%s): %v", m.GuildID, err)
		code = "generic"
	}
	h.reply(m, h.t("errors."+code, nil))
}

// parseRole accepts a role mention or a bare id.
func parseRole(arg string) string {
	return strings.TrimSuffix(strings.TrimPrefix(arg, "<@&"), ">")
}

func parseSwitch(arg string) (bool, bool) {
	switch strings.ToLower(arg) {
	case "on", "true", "yes":
		return true, true
	case "off", "false", "no":
		return false, true
	}
	return false, false
}

package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/application"
	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/output"
	pkgdiscord "eventboard/pkg/discord"
)

var (
	_ output.Platform = (*Platform)(nil)
	_ output.Members  = (*Platform)(nil)
)

// Platform performs the channel side of the event engine with discordgo.
type Platform struct {
	api      api
	tr       output.T
	locale   string
	location *time.Location
}

func NewPlatform(a api, tr output.T, locale string, loc *time.Location) *Platform {
	return &Platform{api: a, tr: tr, locale: locale, location: loc}
}

func (p *Platform) t(key string, data map[string]any) string {
	if p.tr == nil {
		return key
	}
	return p.tr.T(p.locale, key, data)
}

func (p *Platform) labels(event *entities.Event) pkgdiscord.EmbedLabels {
	return pkgdiscord.EmbedLabels{
		Time:           p.t("embed.time", nil),
		Accepted:       p.t("embed.accepted", nil),
		Declined:       p.t("embed.declined", nil),
		Tentative:      p.t("embed.tentative", nil),
		CreatedBy:      p.t("embed.created_by", map[string]any{"Creator": p.creatorName(event)}),
		ReminderPrefix: p.t("embed.reminder_prefix", nil),
	}
}

func (p *Platform) creatorName(event *entities.Event) string {
	if m, err := p.api.GuildMember(event.GuildID, event.Creator); err == nil {
		if name := resolveDisplayName(m); name != "" {
			return name
		}
	}
	return event.Creator
}

// mentionSend builds the post content pinging the event's mention target.
func mentionSend(event *entities.Event) (string, *discordgo.MessageAllowedMentions) {
	text := application.MentionText(event.GuildID, event.MentionTarget)
	allowed := &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
	switch {
	case text == "":
	case event.MentionTarget == event.GuildID:
		allowed.Parse = append(allowed.Parse, discordgo.AllowedMentionTypeEveryone)
	default:
		allowed.Roles = []string{event.MentionTarget}
	}
	return text, allowed
}

func (p *Platform) PublishEvent(ctx context.Context, channelID string, event *entities.Event) (string, error) {
	content, allowed := mentionSend(event)
	msg, err := p.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		Embeds:          []*discordgo.MessageEmbed{pkgdiscord.BuildEventEmbed(event, p.labels(event), p.location)},
		AllowedMentions: allowed,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send event post: %w", err)
	}
	return msg.ID, nil
}

// RenderEvent replaces the post's embed with the current state of event.
func (p *Platform) RenderEvent(ctx context.Context, event *entities.Event) error {
	edit := discordgo.NewMessageEdit(event.ChannelID, event.PostID).
		SetEmbed(pkgdiscord.BuildEventEmbed(event, p.labels(event), p.location))
	if _, err := p.api.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return postError("edit event post", err)
	}
	return nil
}

func (p *Platform) InspectPost(ctx context.Context, channelID, postID string) (output.PostState, error) {
	msg, err := p.api.ChannelMessage(channelID, postID, discordgo.WithContext(ctx))
	if err != nil {
		return output.PostState{}, postError("fetch event post", err)
	}
	return output.PostState{HasEmbed: len(msg.Embeds) > 0}, nil
}

func (p *Platform) DeletePost(ctx context.Context, channelID, postID string) error {
	if err := p.api.ChannelMessageDelete(channelID, postID, discordgo.WithContext(ctx)); err != nil {
		return postError("delete event post", err)
	}
	return nil
}

// postError maps "unknown message/channel" answers to domain.ErrPostNotFound.
func postError(op string, err error) error {
	if pkgdiscord.IsMessageGone(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrPostNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

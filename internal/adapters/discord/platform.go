package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	pkgdiscord "eventboard/pkg/discord"
)

// moderatorPermissions grants event deletion and settings changes.
const moderatorPermissions = discordgo.PermissionAdministrator |
	discordgo.PermissionManageServer |
	discordgo.PermissionManageMessages

func (p *Platform) AttachReactions(ctx context.Context, channelID, postID string) error {
	var errs []error
	for _, glyph := range domain.PostGlyphs {
		if err := p.api.MessageReactionAdd(channelID, postID, glyph, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("add %s: %w", glyph, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Platform) RemoveReaction(ctx context.Context, channelID, postID, glyph, userID string) error {
	if err := p.api.MessageReactionRemove(channelID, postID, glyph, userID, discordgo.WithContext(ctx)); err != nil {
		return postError("remove reaction", err)
	}
	return nil
}

func (p *Platform) SendReminder(ctx context.Context, userID string, event *entities.Event) error {
	ch, err := p.api.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM: %w", dmError(err))
	}
	emb := pkgdiscord.BuildReminderEmbed(event, p.labels(event), p.location)
	if _, err := p.api.ChannelMessageSendEmbed(ch.ID, emb, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send reminder: %w", dmError(err))
	}
	return nil
}

// dmError replaces a "cannot send to this user" refusal by domain.ErrDMClosed.
func dmError(err error) error {
	if pkgdiscord.IsDMClosed(err) {
		return fmt.Errorf("%w: %v", domain.ErrDMClosed, err)
	}
	return err
}

// SendTransient posts content and removes it once ttl has elapsed.
func (p *Platform) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	msg, err := p.api.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	p.deleteLater(channelID, msg.ID, ttl)
	return nil
}

func (p *Platform) deleteLater(channelID, messageID string, ttl time.Duration) {
	time.AfterFunc(ttl, func() {
		if err := p.api.ChannelMessageDelete(channelID, messageID); err != nil && !pkgdiscord.IsMessageGone(err) {
			log.Printf("⚠️ Suppression du message %s: %v", messageID, err)
		}
	})
}

func (p *Platform) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := p.api.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if pkgdiscord.IsMemberGone(err) {
		return false, nil
	}
	return false, fmt.Errorf("fetch member: %w", err)
}

func (p *Platform) IsModerator(ctx context.Context, guildID, userID string) (bool, error) {
	guild, err := p.api.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("fetch guild: %w", err)
	}
	if guild.OwnerID == userID {
		return true, nil
	}
	member, err := p.api.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if pkgdiscord.IsMemberGone(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetch member: %w", err)
	}
	return memberPermissions(guild, member)&moderatorPermissions != 0, nil
}

// memberPermissions sums the guild-level permissions of member's roles,
// @everyone included.
func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	held := make(map[string]bool, len(member.Roles)+1)
	held[guild.ID] = true
	for _, id := range member.Roles {
		held[id] = true
	}
	var perms int64
	for _, role := range guild.Roles {
		if held[role.ID] {
			perms |= role.Permissions
		}
	}
	return perms
}

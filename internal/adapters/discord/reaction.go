package discord

import (
	"github.com/bwmarrin/discordgo"

	"eventboard/internal/domain"
	"eventboard/internal/ports/input"
)

func toReaction(r *discordgo.MessageReaction) input.Reaction {
	emoji := r.Emoji.Name
	kind := domain.ReactionUnknown
	if r.Emoji.ID == "" {
		kind = domain.KindOf(emoji)
	}
	return input.Reaction{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		PostID:    r.MessageID,
		MemberID:  r.UserID,
		Emoji:     emoji,
		Kind:      kind,
	}
}

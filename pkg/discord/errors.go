package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Discord JSON error codes the bot reacts to.
const (
	codeUnknownChannel = discordgo.ErrCodeUnknownChannel
	codeUnknownMember  = discordgo.ErrCodeUnknownMember
	codeUnknownMessage = discordgo.ErrCodeUnknownMessage
	codeUnknownUser    = discordgo.ErrCodeUnknownUser
	codeCannotDM       = discordgo.ErrCodeCannotSendMessagesToThisUser
)

func restError(err error) (*discordgo.RESTError, bool) {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return nil, false
	}
	return rest, true
}

func hasCode(err error, codes ...int) bool {
	rest, ok := restError(err)
	if !ok || rest.Message == nil {
		return false
	}
	for _, c := range codes {
		if rest.Message.Code == c {
			return true
		}
	}
	return false
}

// IsMessageGone reports whether err says the message or its channel no longer exists.
func IsMessageGone(err error) bool {
	if hasCode(err, codeUnknownMessage, codeUnknownChannel) {
		return true
	}
	rest, ok := restError(err)
	return ok && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

// IsMemberGone reports whether err says the user is not (or no longer) in the guild.
func IsMemberGone(err error) bool {
	return hasCode(err, codeUnknownMember, codeUnknownUser)
}

// IsDMClosed reports whether the user does not accept direct messages from the bot.
func IsDMClosed(err error) bool {
	return hasCode(err, codeCannotDM)
}

package discord

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/domain"
	"eventboard/internal/ports/input"
	"eventboard/internal/ports/output"
)

// chatterTTL is how long messages stay in the event channel before removal.
const chatterTTL = 10 * time.Second

// Handler turns gateway events into use case calls.
type Handler struct {
	lifecycle input.LifecycleUseCase
	rsvp      input.RSVPUseCase
	settings  input.SettingsUseCase
	prompter  *Prompter
	platform  *Platform
	api       api
	tr        output.T
	locale    string
	prefix    string
}

// HandlerDeps groups what NewHandler wires together.
type HandlerDeps struct {
	Lifecycle  input.LifecycleUseCase
	RSVP       input.RSVPUseCase
	Settings   input.SettingsUseCase
	Prompter   *Prompter
	Platform   *Platform
	API        api
	Translator output.T
	Locale     string
	Prefix     string
}

func NewHandler(d HandlerDeps) *Handler {
	return &Handler{
		lifecycle: d.Lifecycle,
		rsvp:      d.RSVP,
		settings:  d.Settings,
		prompter:  d.Prompter,
		platform:  d.Platform,
		api:       d.API,
		tr:        d.Translator,
		locale:    d.Locale,
		prefix:    d.Prefix,
	}
}

func (h *Handler) t(key string, data map[string]any) string {
	if h.tr == nil {
		return key
	}
	return h.tr.T(h.locale, key, data)
}

// HandleMessage routes DMs to the prompter, prefix commands to their use
// case and keeps the event channel free of chatter.
func (h *Handler) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		h.prompter.Deliver(m.Author.ID, m.Content)
		return
	}

	cmd, isCommand := h.parseCommand(m.Content)
	if h.settings.IsEventChannel(ctx, m.GuildID, m.ChannelID) {
		if !isCommand {
			notice := h.t("channel.no_chat", map[string]any{"Member": mention(m.Author.ID)})
			if err := h.platform.SendTransient(ctx, m.ChannelID, notice, chatterTTL); err != nil {
				log.Printf("⚠️ Avis salon des événements: %v", err)
			}
		}
		h.platform.deleteLater(m.ChannelID, m.ID, chatterTTL)
	}
	if isCommand {
		h.runCommand(ctx, m, cmd)
	}
}

// HandleReactionAdd applies an RSVP or a delete request for a reaction on an event post.
func (h *Handler) HandleReactionAdd(ctx context.Context, r *discordgo.MessageReaction) {
	re := toReaction(r)
	if re.Kind == domain.ReactionUnknown {
		return
	}
	if err := h.rsvp.ReactionAdded(ctx, re); err != nil {
		logUseCaseError("réaction ajoutée", re, err)
	}
}

func (h *Handler) HandleReactionRemove(ctx context.Context, r *discordgo.MessageReaction) {
	re := toReaction(r)
	if re.Kind == domain.ReactionUnknown || re.Kind == domain.ReactionTrash {
		return
	}
	if err := h.rsvp.ReactionRemoved(ctx, re); err != nil {
		logUseCaseError("réaction retirée", re, err)
	}
}

// logUseCaseError keeps expected refusals (full event, not allowed, timeout) out of the error log.
func logUseCaseError(what string, re input.Reaction, err error) {
	if domain.IsUserFacing(err) || errors.Is(err, context.Canceled) {
		return
	}
	log.Printf("❌ Erreur %s (guild=%s, post=%s, user=%s): %v", what, re.GuildID, re.PostID, re.MemberID, err)
}

func (h *Handler) parseCommand(content string) ([]string, bool) {
	if !strings.HasPrefix(content, h.prefix) {
		return nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, h.prefix))
	if len(fields) == 0 {
		return nil, false
	}
	switch strings.ToLower(fields[0]) {
	case "eventboard", "eventboardset":
		return fields, true
	}
	return nil, false
}

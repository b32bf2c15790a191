package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventboard/internal/application"
	"eventboard/internal/config"
	"eventboard/internal/ports/output"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Bot is the Discord adapter.
type Bot struct {
	session     *discordgo.Session
	handler     *Handler
	maintenance *application.MaintenanceService
	scheduler   *application.Scheduler

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBot creates a Bot and wires ports: output adapters -> application (use cases) -> handler.
func NewBot(cfg *config.Config, store output.EventStore, tr output.T, loc *time.Location) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la session Discord: %w", err)
	}
	s.Identify.Intents = intents

	a := stateSession{Session: s}
	platform := NewPlatform(a, tr, cfg.Locale, loc)
	prompter := NewPrompter(a)

	deps := application.Deps{
		Store:        store,
		Cache:        application.NewEventCache(),
		Platform:     platform,
		Members:      platform,
		Conversation: prompter,
		Translator:   tr,
		Locale:       cfg.Locale,
		Location:     loc,
	}
	lifecycle := application.NewLifecycleService(deps)
	maintenance := application.NewMaintenanceService(deps)

	ctx, cancel := context.WithCancel(context.Background())
	bot := &Bot{
		session: s,
		handler: NewHandler(HandlerDeps{
			Lifecycle:  lifecycle,
			RSVP:       application.NewReconciler(deps, lifecycle),
			Settings:   application.NewSettingsService(store, platform),
			Prompter:   prompter,
			Platform:   platform,
			API:        a,
			Translator: tr,
			Locale:     cfg.Locale,
			Prefix:     cfg.CommandPrefix,
		}),
		maintenance: maintenance,
		scheduler:   application.NewScheduler(maintenance, cfg.SweepInterval, cfg.ReloadInterval),
		ctx:         ctx,
		cancel:      cancel,
	}
	bot.setupHandlers()
	return bot, nil
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onReactionAdd)
	b.session.AddHandler(b.onReactionRemove)
}

func (b *Bot) isSelf(s *discordgo.Session, userID string) bool {
	return s.State != nil && s.State.User != nil && s.State.User.ID == userID
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || b.isSelf(s, m.Author.ID) {
		return
	}
	b.handler.HandleMessage(b.ctx, m.Message)
}

func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if b.isSelf(s, r.UserID) {
		return
	}
	b.handler.HandleReactionAdd(b.ctx, r.MessageReaction)
}

func (b *Bot) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if b.isSelf(s, r.UserID) {
		return
	}
	b.handler.HandleReactionRemove(b.ctx, r.MessageReaction)
}

// Run opens the gateway, starts maintenance and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de la session: %w", err)
	}
	defer b.session.Close()

	if err := b.startMaintenance(); err != nil {
		return err
	}
	defer b.stopMaintenance()

	log.Println("🤖 Bot en ligne ! Appuyez sur CTRL+C pour quitter.")
	<-ctx.Done()
	log.Println("👋 Arrêt du bot.")
	return nil
}

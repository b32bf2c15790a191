package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/input"
	"eventboard/internal/ports/output"
)

var _ input.LifecycleUseCase = (*LifecycleService)(nil)

// LifecycleService creates and deletes events.
type LifecycleService struct {
	Deps
}

func NewLifecycleService(d Deps) *LifecycleService {
	return &LifecycleService{Deps: d}
}

// CreateEvent runs the creation dialogue with the author, then publishes the
// post, persists the record and caches it, in that order. Nothing is kept
// when a step fails.
func (s *LifecycleService) CreateEvent(ctx context.Context, req input.CreateRequest) (*entities.Event, error) {
	settings, err := s.Store.Settings(ctx, req.GuildID)
	if err != nil {
		s.explain(ctx, req.AuthorID, "errors.creation_stopped", err)
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsConfigured() {
		s.explain(ctx, req.AuthorID, "errors.creation_stopped", domain.ErrNotConfigured)
		return nil, domain.ErrNotConfigured
	}

	id, err := s.Store.AllocateEventID(ctx, req.GuildID)
	if err != nil {
		s.explain(ctx, req.AuthorID, "errors.creation_stopped", err)
		return nil, fmt.Errorf("allocate event id: %w", err)
	}
	createdAt := s.now()

	answers, err := s.runWizard(ctx, req.GuildID, req.AuthorID, settings)
	if err != nil {
		s.explain(ctx, req.AuthorID, "errors.creation_stopped", err)
		return nil, err
	}

	event, err := entities.NewEvent(entities.EventParams{
		ID:            id,
		GuildID:       req.GuildID,
		ChannelID:     settings.EventChannelID,
		Creator:       req.AuthorID,
		CreateTime:    createdAt,
		Name:          answers.name,
		Description:   answers.description,
		MaxAttendees:  answers.maxAttendees,
		EventStart:    answers.start,
		Image:         answers.image,
		MentionTarget: answers.mentionTarget,
	})
	if err != nil {
		s.explain(ctx, req.AuthorID, "errors.creation_stopped", err)
		return nil, err
	}

	if err := s.publish(ctx, event); err != nil {
		s.explain(ctx, req.AuthorID, "errors.creation_stopped", err)
		return nil, err
	}
	log.Printf("✅ Événement %d créé (guild=%s, post=%s)", event.ID, event.GuildID, event.PostID)
	return event, nil
}

// publish sends the post, persists the record under its post id and caches it.
// If the record cannot be saved the post is taken down again.
func (s *LifecycleService) publish(ctx context.Context, event *entities.Event) error {
	postID, err := s.Platform.PublishEvent(ctx, event.ChannelID, event.Clone())
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	event.PostID = postID

	// Le verrou du post prend aussi la guilde en lecture : un rechargement
	// ne peut pas écraser l'entrée avec un état du store antérieur.
	unlock := s.Cache.Lock(event.GuildID, postID)
	err = s.Store.UpdateEvents(ctx, event.GuildID, func(events map[string]*entities.Event) error {
		events[postID] = event.Clone()
		return nil
	})
	if err != nil {
		unlock()
		if delErr := s.Platform.DeletePost(ctx, event.ChannelID, postID); delErr != nil {
			log.Printf("❌ Suppression du post orphelin %s: %v", postID, delErr)
		}
		return fmt.Errorf("save event: %w", err)
	}
	s.Cache.Put(event.GuildID, event)
	unlock()

	if err := s.Platform.AttachReactions(ctx, event.ChannelID, postID); err != nil {
		log.Printf("⚠️ Ajout des réactions (post=%s): %v", postID, err)
	}
	return nil
}

// RequestDelete handles a trash reaction: only the creator or a moderator may
// delete, and only after confirming. Every other outcome reverts the reaction.
func (s *LifecycleService) RequestDelete(ctx context.Context, req input.DeleteRequest) error {
	event, ok := s.Cache.Get(req.GuildID, req.PostID)
	if !ok {
		return nil
	}
	revert := func() {
		if err := s.Platform.RemoveReaction(ctx, req.ChannelID, req.PostID, req.Emoji, req.MemberID); err != nil {
			log.Printf("⚠️ Retrait de la réaction %s (post=%s, user=%s): %v", req.Emoji, req.PostID, req.MemberID, err)
		}
	}

	if req.MemberID != event.Creator {
		allowed, err := s.Members.IsModerator(ctx, req.GuildID, req.MemberID)
		if err != nil {
			revert()
			return fmt.Errorf("check moderator: %w", err)
		}
		if !allowed {
			s.tell(ctx, req.MemberID, output.Message{Body: s.t("errors.unauthorized", nil), Tone: output.ToneFailure})
			revert()
			return domain.ErrUnauthorized
		}
	}

	answer, err := s.Conversation.Ask(ctx, req.MemberID, output.Message{
		Title: s.t("delete.confirm.prompt", map[string]any{"Name": event.Name}),
		Body:  s.t("delete.confirm.hint", nil),
		Tone:  output.ToneQuestion,
	}, confirmationTimeout)
	if err != nil {
		revert()
		if domain.IsUserFacing(err) {
			s.explain(ctx, req.MemberID, "delete.cancelled", err)
		}
		return err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y":
	case "n":
		revert()
		s.tell(ctx, req.MemberID, output.Message{Body: s.t("delete.cancelled", nil), Tone: output.ToneInfo})
		return nil
	default:
		revert()
		s.tell(ctx, req.MemberID, output.Message{Body: s.t("delete.invalid_answer", nil), Tone: output.ToneInfo})
		return nil
	}

	unlock := s.Cache.Lock(req.GuildID, req.PostID)
	defer unlock()

	current, ok := s.Cache.Get(req.GuildID, req.PostID)
	if !ok {
		// Supprimé entre-temps (maintenance ou autre modérateur).
		return nil
	}
	if err := s.Platform.DeletePost(ctx, current.ChannelID, current.PostID); err != nil && !errors.Is(err, domain.ErrPostNotFound) {
		s.explain(ctx, req.MemberID, "delete.failed", err)
		return fmt.Errorf("delete post: %w", err)
	}
	if err := s.removeRecord(ctx, req.GuildID, req.PostID); err != nil {
		return fmt.Errorf("delete event record: %w", err)
	}
	s.tell(ctx, req.MemberID, output.Message{Body: s.t("delete.done", nil), Tone: output.ToneInfo})
	log.Printf("🗑️ Événement %d supprimé par %s (guild=%s)", current.ID, req.MemberID, req.GuildID)
	return nil
}

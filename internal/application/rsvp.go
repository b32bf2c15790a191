package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/input"
)

var _ input.RSVPUseCase = (*Reconciler)(nil)

// capacityNoticeTTL is how long the "event is full" notice stays in the channel.
const capacityNoticeTTL = 10 * time.Second

// Reconciler applies reaction-driven attendance changes to the store and the
// cache, then re-renders the post.
type Reconciler struct {
	Deps
	lifecycle input.LifecycleUseCase
}

func NewReconciler(d Deps, lifecycle input.LifecycleUseCase) *Reconciler {
	return &Reconciler{Deps: d, lifecycle: lifecycle}
}

// ReactionAdded moves the member to the list the reaction stands for.
// Posts the cache does not know are ignored.
func (r *Reconciler) ReactionAdded(ctx context.Context, re input.Reaction) error {
	if re.Kind == domain.ReactionUnknown {
		return nil
	}
	if _, ok := r.Cache.Get(re.GuildID, re.PostID); !ok {
		return nil
	}
	if re.Kind == domain.ReactionTrash {
		return r.lifecycle.RequestDelete(ctx, input.DeleteRequest{
			GuildID:   re.GuildID,
			ChannelID: re.ChannelID,
			PostID:    re.PostID,
			MemberID:  re.MemberID,
			Emoji:     re.Emoji,
		})
	}

	unlock := r.Cache.Lock(re.GuildID, re.PostID)
	defer unlock()

	var cleared []domain.Status
	event, changed, err := r.mutate(ctx, re.GuildID, re.PostID, func(e *entities.Event) (bool, error) {
		c, changed, err := e.Join(re.MemberID, re.Kind.Status())
		cleared = c
		return changed, err
	})
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		r.rejectFull(ctx, re)
		return err
	case errors.Is(err, domain.ErrEventNotFound):
		log.Printf("⚠️ %v: post %s absent du store, retiré du cache (guild=%s)", domain.ErrDriftDetected, re.PostID, re.GuildID)
		return nil
	case err != nil:
		return fmt.Errorf("apply %s for %s: %w", re.Kind.Status(), re.MemberID, err)
	}
	if !changed {
		return nil
	}

	for _, s := range cleared {
		if err := r.Platform.RemoveReaction(ctx, re.ChannelID, re.PostID, domain.GlyphFor(s), re.MemberID); err != nil {
			log.Printf("⚠️ Retrait de la réaction %s (post=%s, user=%s): %v", domain.GlyphFor(s), re.PostID, re.MemberID, err)
		}
	}
	if err := r.Platform.RenderEvent(ctx, event); err != nil {
		return fmt.Errorf("render event: %w", err)
	}
	return nil
}

// ReactionRemoved takes the member out of the matching list. Nothing is
// written or rendered when they were not in it.
func (r *Reconciler) ReactionRemoved(ctx context.Context, re input.Reaction) error {
	status := re.Kind.Status()
	if status == domain.StatusNone {
		return nil
	}
	cached, ok := r.Cache.Get(re.GuildID, re.PostID)
	if !ok || cached.StatusOf(re.MemberID) == domain.StatusNone {
		return nil
	}

	unlock := r.Cache.Lock(re.GuildID, re.PostID)
	defer unlock()

	event, changed, err := r.mutate(ctx, re.GuildID, re.PostID, func(e *entities.Event) (bool, error) {
		return e.Leave(re.MemberID, status), nil
	})
	if errors.Is(err, domain.ErrEventNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("withdraw %s for %s: %w", status, re.MemberID, err)
	}
	if !changed {
		return nil
	}
	if err := r.Platform.RenderEvent(ctx, event); err != nil {
		return fmt.Errorf("render event: %w", err)
	}
	return nil
}

func (r *Reconciler) rejectFull(ctx context.Context, re input.Reaction) {
	event, _ := r.Cache.Get(re.GuildID, re.PostID)
	limit := 0
	if event != nil {
		limit = event.MaxAttendees
	}
	notice := r.t("errors.capacity_exceeded", map[string]any{"Member": "<@" + re.MemberID + ">", "Max": limit})
	if err := r.Platform.SendTransient(ctx, re.ChannelID, notice, capacityNoticeTTL); err != nil {
		log.Printf("⚠️ Avis complet (post=%s): %v", re.PostID, err)
	}
	glyph := re.Emoji
	if glyph == "" {
		glyph = domain.GlyphAttend
	}
	if err := r.Platform.RemoveReaction(ctx, re.ChannelID, re.PostID, glyph, re.MemberID); err != nil {
		log.Printf("⚠️ Retrait de la réaction %s (post=%s, user=%s): %v", glyph, re.PostID, re.MemberID, err)
	}
}

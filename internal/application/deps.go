package application

import (
	"context"
	"errors"
	"log"
	"time"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/output"
)

// Deps groups the collaborators shared by the lifecycle, RSVP and
// maintenance services. The same Cache must be handed to all of them.
type Deps struct {
	Store        output.EventStore
	Cache        *EventCache
	Platform     output.Platform
	Members      output.Members
	Conversation output.Conversation
	Translator   output.T
	Locale       string
	Location     *time.Location
	Now          func() time.Time
}

// errNoChange aborts a store update whose callback found nothing to write.
var errNoChange = errors.New("no change")

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

func (d Deps) t(key string, data map[string]any) string {
	if d.Translator == nil {
		return key
	}
	return d.Translator.T(d.Locale, key, data)
}

func (d Deps) tell(ctx context.Context, userID string, msg output.Message) {
	if err := d.Conversation.Tell(ctx, userID, msg); err != nil {
		log.Printf("⚠️ Envoi MP impossible (user=%s): %v", userID, err)
	}
}

// explain tells userID why their request stopped, using the error code as key.
func (d Deps) explain(ctx context.Context, userID, titleKey string, err error) {
	code := domain.Code(err)
	if code == "" {
		code = "generic"
	}
	d.tell(ctx, userID, output.Message{
		Title: d.t(titleKey, nil),
		Body:  d.t("errors."+code, nil),
		Tone:  output.ToneFailure,
	})
}

// mutate applies fn to the stored record of postID inside one store
// transaction and writes the result through to the cache. The caller holds
// the post lock. changed is false when fn reported nothing to write.
func (d Deps) mutate(ctx context.Context, guildID, postID string, fn func(*entities.Event) (bool, error)) (event *entities.Event, changed bool, err error) {
	err = d.Store.UpdateEvents(ctx, guildID, func(events map[string]*entities.Event) error {
		e, ok := events[postID]
		if !ok {
			return domain.ErrEventNotFound
		}
		e.GuildID = guildID
		ch, err := fn(e)
		if err != nil {
			return err
		}
		event = e.Clone()
		if !ch {
			return errNoChange
		}
		changed = true
		return nil
	})
	switch {
	case errors.Is(err, errNoChange):
		d.Cache.Put(guildID, event)
		return event, false, nil
	case errors.Is(err, domain.ErrEventNotFound):
		d.Cache.Delete(guildID, postID)
		return nil, false, err
	case err != nil:
		return nil, false, err
	}
	d.Cache.Put(guildID, event)
	return event, true, nil
}

// removeRecord drops postID from the store, then from the cache.
func (d Deps) removeRecord(ctx context.Context, guildID, postID string) error {
	err := d.Store.UpdateEvents(ctx, guildID, func(events map[string]*entities.Event) error {
		if _, ok := events[postID]; !ok {
			return errNoChange
		}
		delete(events, postID)
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return err
	}
	d.Cache.Delete(guildID, postID)
	return nil
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"time"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/input"
)

var _ input.MaintenanceUseCase = (*MaintenanceService)(nil)

// MaintenanceService repairs drift between stored events and their posts.
type MaintenanceService struct {
	Deps
}

func NewMaintenanceService(d Deps) *MaintenanceService {
	return &MaintenanceService{Deps: d}
}

// SweepAll runs Sweep for every guild known to the store.
func (m *MaintenanceService) SweepAll(ctx context.Context) (input.SweepReport, error) {
	var total input.SweepReport
	guilds, err := m.Store.Guilds(ctx)
	if err != nil {
		return total, fmt.Errorf("list guilds: %w", err)
	}
	for _, guildID := range guilds {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		report, err := m.Sweep(ctx, guildID)
		total.Add(report)
		if err != nil {
			log.Printf("❌ Maintenance guild %s: %v", guildID, err)
		}
	}
	return total, nil
}

// Sweep checks every stored event of a configured guild. A failure on one
// event is logged and counted; the others are still processed.
func (m *MaintenanceService) Sweep(ctx context.Context, guildID string) (input.SweepReport, error) {
	var report input.SweepReport
	settings, err := m.Store.Settings(ctx, guildID)
	if err != nil {
		return report, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsConfigured() {
		return report, nil
	}
	events, err := m.Store.Events(ctx, guildID)
	if err != nil {
		return report, fmt.Errorf("load events: %w", err)
	}

	now := m.now()
	for _, postID := range slices.Sorted(maps.Keys(events)) {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Checked++
		if err := m.maintain(ctx, settings, postID, now, &report); err != nil {
			report.Failures++
			log.Printf("❌ Maintenance (guild=%s, post=%s): %v", guildID, postID, err)
		}
	}
	return report, nil
}

// maintain runs every maintenance rule on one event under its post lock.
func (m *MaintenanceService) maintain(ctx context.Context, settings *entities.GuildSettings, postID string, now time.Time, report *input.SweepReport) error {
	guildID := settings.GuildID
	unlock := m.Cache.Lock(guildID, postID)
	defer unlock()

	event, err := m.load(ctx, guildID, postID)
	if errors.Is(err, domain.ErrEventNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	state, err := m.Platform.InspectPost(ctx, event.ChannelID, postID)
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		if event.HasStarted(now) {
			if err := m.removeRecord(ctx, guildID, postID); err != nil {
				return fmt.Errorf("drop lost event: %w", err)
			}
			report.Deleted++
			log.Printf("🧹 Événement %d perdu et passé, supprimé (guild=%s)", event.ID, guildID)
			return nil
		}
		recreated, unlockNew, err := m.recreate(ctx, settings, event)
		if err != nil {
			return fmt.Errorf("recreate post: %w", err)
		}
		defer unlockNew()
		report.Recreated++
		event = recreated
		state.HasEmbed = true
	case err != nil:
		return fmt.Errorf("inspect post: %w", err)
	}

	if offset, ok := settings.AutoDeleteOffset(); ok && event.EventStart.Before(now.Add(-offset)) {
		if err := m.Platform.DeletePost(ctx, event.ChannelID, event.PostID); err != nil && !errors.Is(err, domain.ErrPostNotFound) {
			return fmt.Errorf("auto-delete post: %w", err)
		}
		if err := m.removeRecord(ctx, guildID, event.PostID); err != nil {
			return fmt.Errorf("auto-delete record: %w", err)
		}
		report.Deleted++
		return nil
	}

	var errs []error
	needsRender := !state.HasEmbed

	if sent, err := m.remind(ctx, settings, event, now); err != nil {
		errs = append(errs, err)
	} else {
		report.RemindersSent += sent
	}

	pruned, updated, err := m.pruneDeparted(ctx, event)
	if err != nil {
		errs = append(errs, err)
	}
	if pruned > 0 {
		report.MembersPruned += pruned
		event = updated
		needsRender = true
	}

	if needsRender {
		if err := m.Platform.RenderEvent(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("render event: %w", err))
		} else {
			report.Rerendered++
		}
	}
	return errors.Join(errs...)
}

func (m *MaintenanceService) load(ctx context.Context, guildID, postID string) (*entities.Event, error) {
	events, err := m.Store.Events(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	e, ok := events[postID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	e.GuildID = guildID
	return e, nil
}

// recreate publishes a replacement post in the event channel and moves the
// record to the new post id in both tiers. The returned function releases
// the lock taken on the new post.
func (m *MaintenanceService) recreate(ctx context.Context, settings *entities.GuildSettings, event *entities.Event) (*entities.Event, func(), error) {
	guildID := settings.GuildID
	oldPostID := event.PostID

	fresh := event.Clone()
	fresh.ChannelID = settings.EventChannelID
	newPostID, err := m.Platform.PublishEvent(ctx, fresh.ChannelID, fresh.Clone())
	if err != nil {
		return nil, nil, err
	}
	fresh.PostID = newPostID

	unlockNew := m.Cache.locks.lockAdditional(guildID, newPostID)
	err = m.Store.UpdateEvents(ctx, guildID, func(events map[string]*entities.Event) error {
		delete(events, oldPostID)
		events[newPostID] = fresh.Clone()
		return nil
	})
	if err != nil {
		unlockNew()
		if delErr := m.Platform.DeletePost(ctx, fresh.ChannelID, newPostID); delErr != nil {
			log.Printf("❌ Suppression du post orphelin %s: %v", newPostID, delErr)
		}
		return nil, nil, fmt.Errorf("migrate record: %w", err)
	}
	m.Cache.Move(guildID, oldPostID, fresh)

	if err := m.Platform.AttachReactions(ctx, fresh.ChannelID, newPostID); err != nil {
		log.Printf("⚠️ Ajout des réactions (post=%s): %v", newPostID, err)
	}
	log.Printf("♻️ Post de l'événement %d recréé (guild=%s, %s → %s)", fresh.ID, guildID, oldPostID, newPostID)
	return fresh, unlockNew, nil
}

// remind DMs every attending member once the start is within the reminder lead.
func (m *MaintenanceService) remind(ctx context.Context, settings *entities.GuildSettings, event *entities.Event, now time.Time) (int, error) {
	lead, ok := settings.ReminderLead()
	if !ok || event.ReminderSent {
		return 0, nil
	}
	if event.EventStart.Before(now) || event.EventStart.After(now.Add(lead)) {
		return 0, nil
	}

	sent := 0
	for _, member := range event.Attending {
		if err := m.Platform.SendReminder(ctx, member, event.Clone()); err != nil {
			if errors.Is(err, domain.ErrDMClosed) {
				log.Printf("ℹ️ MP fermés, rappel ignoré (event=%d, user=%s)", event.ID, member)
			} else {
				log.Printf("⚠️ Rappel non délivré (event=%d, user=%s): %v", event.ID, member, err)
			}
			continue
		}
		sent++
	}

	// Marqué même si des MP ont échoué : un membre aux MP fermés ne doit pas
	// déclencher un renvoi à chaque passage.
	_, _, err := m.mutate(ctx, settings.GuildID, event.PostID, func(e *entities.Event) (bool, error) {
		if e.ReminderSent {
			return false, nil
		}
		e.ReminderSent = true
		return true, nil
	})
	if err != nil {
		return sent, fmt.Errorf("mark reminder sent: %w", err)
	}
	event.ReminderSent = true
	return sent, nil
}

// pruneDeparted drops members who left the guild from every list with a single write.
func (m *MaintenanceService) pruneDeparted(ctx context.Context, event *entities.Event) (int, *entities.Event, error) {
	var gone []string
	var errs []error
	for _, member := range event.Members() {
		ok, err := m.Members.IsMember(ctx, event.GuildID, member)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve member %s: %w", member, err))
			continue
		}
		if !ok {
			gone = append(gone, member)
		}
	}
	if len(gone) == 0 {
		return 0, event, errors.Join(errs...)
	}

	updated, _, err := m.mutate(ctx, event.GuildID, event.PostID, func(e *entities.Event) (bool, error) {
		changed := false
		for _, member := range gone {
			if e.Prune(member) {
				changed = true
			}
		}
		return changed, nil
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("prune members: %w", err))
		return 0, event, errors.Join(errs...)
	}
	log.Printf("🧹 %d membre(s) parti(s) retiré(s) de l'événement %d (guild=%s)", len(gone), event.ID, event.GuildID)
	return len(gone), updated, errors.Join(errs...)
}

// Reload rebuilds the cache from the store, which always wins.
func (m *MaintenanceService) Reload(ctx context.Context) (int, error) {
	guilds, err := m.Store.Guilds(ctx)
	if err != nil {
		return 0, fmt.Errorf("list guilds: %w", err)
	}
	drifted := 0
	var errs []error
	for _, guildID := range guilds {
		if err := m.reloadGuild(ctx, guildID, &drifted); err != nil {
			errs = append(errs, fmt.Errorf("guild %s: %w", guildID, err))
		}
	}
	return drifted, errors.Join(errs...)
}

func (m *MaintenanceService) reloadGuild(ctx context.Context, guildID string, drifted *int) error {
	unlock := m.Cache.locks.LockGuild(guildID)
	defer unlock()

	events, err := m.Store.Events(ctx, guildID)
	if err != nil {
		return err
	}
	for _, e := range events {
		e.GuildID = guildID
	}
	if m.Cache.Replace(guildID, events) {
		*drifted++
		log.Printf("⚠️ %v (guild=%s): cache reconstruit depuis le store", domain.ErrStorageInconsistency, guildID)
	}
	return nil
}

package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/input"
)

func newReconciler(e *env) *Reconciler {
	return NewReconciler(e.deps, NewLifecycleService(e.deps))
}

func reaction(member, glyph string) input.Reaction {
	return input.Reaction{
		GuildID:   testGuild,
		ChannelID: testChannel,
		PostID:    "p1",
		MemberID:  member,
		Emoji:     glyph,
		Kind:      domain.KindOf(glyph),
	}
}

func TestReactionAdded_CapacityScenario(t *testing.T) {
	e := newEnv()
	e.seed("p1", 2, e.now.Add(24*time.Hour))
	r := newReconciler(e)
	ctx := context.Background()

	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphAttend)))
	require.NoError(t, r.ReactionAdded(ctx, reaction("B", domain.GlyphAttend)))

	err := r.ReactionAdded(ctx, reaction("C", domain.GlyphAttend))
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	stored, ok := e.store.get(testGuild, "p1")
	require.True(t, ok)
	assert.Equal(t, entities.MemberList{"A", "B"}, stored.Attending)

	cached, ok := e.deps.Cache.Get(testGuild, "p1")
	require.True(t, ok)
	assert.Equal(t, stored.Attending, cached.Attending)

	assert.Len(t, e.platform.transient, 1)
	assert.Contains(t, e.platform.removed, removedReaction{"p1", domain.GlyphAttend, "C"})
	assert.Equal(t, 2, e.platform.renders())
}

func TestReactionAdded_AttendThenDecline(t *testing.T) {
	e := newEnv()
	e.seed("p1", 0, e.now.Add(24*time.Hour))
	r := newReconciler(e)
	ctx := context.Background()

	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphAttend)))
	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphDecline)))

	stored, _ := e.store.get(testGuild, "p1")
	assert.Empty(t, stored.Attending)
	assert.Equal(t, entities.MemberList{"A"}, stored.Declined)
	assert.Equal(t, []removedReaction{{"p1", domain.GlyphAttend, "A"}}, e.platform.removed)
	assert.Equal(t, 2, e.platform.renders())
}

func TestReactionAdded_RepeatIsNoop(t *testing.T) {
	e := newEnv()
	e.seed("p1", 0, e.now.Add(24*time.Hour))
	r := newReconciler(e)
	ctx := context.Background()

	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphMaybe)))
	writes := e.store.writes
	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphMaybe)))

	assert.Equal(t, writes, e.store.writes)
	assert.Equal(t, 1, e.platform.renders())
}

func TestReactionAdded_IgnoresUntrackedAndUnknown(t *testing.T) {
	e := newEnv()
	e.seed("p1", 0, e.now.Add(24*time.Hour))
	r := newReconciler(e)
	ctx := context.Background()

	other := reaction("A", domain.GlyphAttend)
	other.PostID = "unknown"
	require.NoError(t, r.ReactionAdded(ctx, other))
	require.NoError(t, r.ReactionAdded(ctx, reaction("A", "👍")))

	assert.Zero(t, e.store.writes)
	assert.Zero(t, e.platform.renders())
}

func TestReactionRemoved_Idempotent(t *testing.T) {
	e := newEnv()
	e.seed("p1", 0, e.now.Add(24*time.Hour))
	r := newReconciler(e)
	ctx := context.Background()

	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphAttend)))
	require.NoError(t, r.ReactionRemoved(ctx, reaction("A", domain.GlyphAttend)))
	writes, renders := e.store.writes, e.platform.renders()

	require.NoError(t, r.ReactionRemoved(ctx, reaction("A", domain.GlyphAttend)))
	require.NoError(t, r.ReactionRemoved(ctx, reaction("A", domain.GlyphDecline)))

	assert.Equal(t, writes, e.store.writes)
	assert.Equal(t, renders, e.platform.renders())
	stored, _ := e.store.get(testGuild, "p1")
	assert.Empty(t, stored.Members())
}

func TestReactionRemoved_CrossListCleanupDoesNotUndoNewStatus(t *testing.T) {
	e := newEnv()
	e.seed("p1", 0, e.now.Add(24*time.Hour))
	r := newReconciler(e)
	ctx := context.Background()

	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphAttend)))
	require.NoError(t, r.ReactionAdded(ctx, reaction("A", domain.GlyphMaybe)))
	// The bot removing the old ✅ reaction echoes back as a removal.
	require.NoError(t, r.ReactionRemoved(ctx, reaction("A", domain.GlyphAttend)))

	stored, _ := e.store.get(testGuild, "p1")
	assert.Equal(t, domain.StatusMaybe, stored.StatusOf("A"))
}

func TestReactionAdded_ConcurrentCapacity(t *testing.T) {
	e := newEnv()
	e.seed("p1", 3, e.now.Add(24*time.Hour))
	r := newReconciler(e)

	var wg sync.WaitGroup
	for _, m := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.ReactionAdded(context.Background(), reaction(m, domain.GlyphAttend))
		}()
	}
	wg.Wait()

	stored, _ := e.store.get(testGuild, "p1")
	assert.Len(t, stored.Attending, 3)
	cached, _ := e.deps.Cache.Get(testGuild, "p1")
	assert.Equal(t, stored.Attending, cached.Attending)
}

func TestReactionAdded_DriftDropsCacheEntry(t *testing.T) {
	e := newEnv()
	e.seed("p1", 0, e.now.Add(24*time.Hour))
	require.NoError(t, e.store.UpdateEvents(context.Background(), testGuild, func(m map[string]*entities.Event) error {
		delete(m, "p1")
		return nil
	}))
	r := newReconciler(e)

	require.NoError(t, r.ReactionAdded(context.Background(), reaction("A", domain.GlyphAttend)))
	assert.False(t, hasPost(e.deps.Cache, "p1"))
}

func hasPost(c *EventCache, postID string) bool {
	_, ok := c.Get(testGuild, postID)
	return ok
}

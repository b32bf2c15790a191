package application

import (
	"reflect"
	"sync"
	"time"

	"eventboard/internal/domain/entities"
)

// EventCache mirrors the event store in memory: guild → post id → event.
// Records are copied on the way in and on the way out. Callers mutating a
// record hold Lock for its post across the store write and the cache update.
type EventCache struct {
	mu     sync.RWMutex
	guilds map[string]map[string]*entities.Event
	locks  *postLocks
}

func NewEventCache() *EventCache {
	return &EventCache{
		guilds: make(map[string]map[string]*entities.Event),
		locks:  newPostLocks(),
	}
}

// Lock serializes mutations of one post and returns the unlock function.
func (c *EventCache) Lock(guildID, postID string) func() {
	return c.locks.Lock(guildID, postID)
}

// Get returns a copy of the event behind postID.
func (c *EventCache) Get(guildID, postID string) (*entities.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.guilds[guildID][postID]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (c *EventCache) Put(guildID string, e *entities.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.guilds[guildID]
	if !ok {
		g = make(map[string]*entities.Event)
		c.guilds[guildID] = g
	}
	g[e.PostID] = e.Clone()
}

func (c *EventCache) Delete(guildID, postID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.guilds[guildID], postID)
}

// Move re-keys an event whose post was recreated.
func (c *EventCache) Move(guildID, oldPostID string, e *entities.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.guilds[guildID]
	if !ok {
		g = make(map[string]*entities.Event)
		c.guilds[guildID] = g
	}
	delete(g, oldPostID)
	g[e.PostID] = e.Clone()
}

// Replace swaps the guild's events for events and reports whether the
// previous content differed.
func (c *EventCache) Replace(guildID string, events map[string]*entities.Event) bool {
	next := make(map[string]*entities.Event, len(events))
	for k, e := range events {
		next[k] = e.Clone()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, tracked := c.guilds[guildID]
	c.guilds[guildID] = next
	if !tracked {
		return false
	}
	return !sameEvents(prev, next)
}

func sameEvents(a, b map[string]*entities.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for k, ea := range a {
		eb, ok := b[k]
		if !ok || !reflect.DeepEqual(normalized(ea), normalized(eb)) {
			return false
		}
	}
	return true
}

// normalized erases what a store round trip does not keep: the nil/empty
// distinction of member lists and sub-second precision.
func normalized(e *entities.Event) *entities.Event {
	c := e.Clone()
	c.CreateTime = time.Unix(c.CreateTime.Unix(), 0)
	c.EventStart = time.Unix(c.EventStart.Unix(), 0)
	return c
}

package application

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"eventboard/internal/domain"
	"eventboard/internal/domain/entities"
	"eventboard/internal/ports/output"
)

// fakeStore is an in-memory EventStore. Update callbacks work on copies that
// are committed only when they return nil, like a rolled back transaction.
type fakeStore struct {
	mu        sync.Mutex
	settings  map[string]*entities.GuildSettings
	events    map[string]map[string]*entities.Event
	updateErr error
	writes    int
	reads     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: make(map[string]*entities.GuildSettings),
		events:   make(map[string]map[string]*entities.Event),
	}
}

func (s *fakeStore) configure(guildID, channelID string, tweak func(*entities.GuildSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := entities.NewGuildSettings(guildID)
	g.EventChannelID = channelID
	if tweak != nil {
		tweak(g)
	}
	s.settings[guildID] = g
}

func (s *fakeStore) put(guildID string, e *entities.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events[guildID] == nil {
		s.events[guildID] = make(map[string]*entities.Event)
	}
	s.events[guildID][e.PostID] = e.Clone()
}

func (s *fakeStore) get(guildID, postID string) (*entities.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[guildID][postID]
	return e.Clone(), ok
}

func (s *fakeStore) count(guildID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events[guildID])
}

func (s *fakeStore) Guilds(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool)
	for g := range s.settings {
		set[g] = true
	}
	for g := range s.events {
		set[g] = true
	}
	return slices.Sorted(maps.Keys(set)), nil
}

func (s *fakeStore) Settings(ctx context.Context, guildID string) (*entities.GuildSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if g, ok := s.settings[guildID]; ok {
		return g.Clone(), nil
	}
	return entities.NewGuildSettings(guildID), nil
}

func (s *fakeStore) UpdateSettings(ctx context.Context, guildID string, fn func(*entities.GuildSettings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.settings[guildID]
	if !ok {
		g = entities.NewGuildSettings(guildID)
	}
	c := g.Clone()
	if err := fn(c); err != nil {
		return err
	}
	s.settings[guildID] = c
	return nil
}

func (s *fakeStore) AllocateEventID(ctx context.Context, guildID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.settings[guildID]
	if !ok {
		g = entities.NewGuildSettings(guildID)
		s.settings[guildID] = g
	}
	id := g.NextEventID
	g.NextEventID++
	return id, nil
}

func (s *fakeStore) Events(ctx context.Context, guildID string) (map[string]*entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*entities.Event, len(s.events[guildID]))
	for k, e := range s.events[guildID] {
		out[k] = e.Clone()
	}
	return out, nil
}

func (s *fakeStore) UpdateEvents(ctx context.Context, guildID string, fn func(map[string]*entities.Event) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	work := make(map[string]*entities.Event, len(s.events[guildID]))
	for k, e := range s.events[guildID] {
		work[k] = e.Clone()
	}
	if err := fn(work); err != nil {
		return err
	}
	s.events[guildID] = work
	s.writes++
	return nil
}

type removedReaction struct {
	postID, glyph, userID string
}

// fakePlatform records every channel operation.
type fakePlatform struct {
	mu         sync.Mutex
	nextPost   int
	posts      map[string]output.PostState
	published  []*entities.Event
	rendered   []*entities.Event
	deleted    []string
	removed    []removedReaction
	reminders  []string
	transient  []string
	attached   []string
	publishErr error
	deleteErr  error
	closedDMs  map[string]bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{nextPost: 100, posts: make(map[string]output.PostState)}
}

func (p *fakePlatform) addPost(postID string, hasEmbed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts[postID] = output.PostState{HasEmbed: hasEmbed}
}

func (p *fakePlatform) dropPost(postID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.posts, postID)
}

func (p *fakePlatform) renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rendered)
}

func (p *fakePlatform) PublishEvent(ctx context.Context, channelID string, event *entities.Event) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return "", p.publishErr
	}
	p.nextPost++
	id := fmt.Sprintf("p%d", p.nextPost)
	p.posts[id] = output.PostState{HasEmbed: true}
	p.published = append(p.published, event.Clone())
	return id, nil
}

func (p *fakePlatform) RenderEvent(ctx context.Context, event *entities.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.posts[event.PostID]; !ok {
		return domain.ErrPostNotFound
	}
	p.posts[event.PostID] = output.PostState{HasEmbed: true}
	p.rendered = append(p.rendered, event.Clone())
	return nil
}

func (p *fakePlatform) InspectPost(ctx context.Context, channelID, postID string) (output.PostState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.posts[postID]
	if !ok {
		return output.PostState{}, domain.ErrPostNotFound
	}
	return st, nil
}

func (p *fakePlatform) DeletePost(ctx context.Context, channelID, postID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	if _, ok := p.posts[postID]; !ok {
		return domain.ErrPostNotFound
	}
	delete(p.posts, postID)
	p.deleted = append(p.deleted, postID)
	return nil
}

func (p *fakePlatform) AttachReactions(ctx context.Context, channelID, postID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attached = append(p.attached, postID)
	return nil
}

func (p *fakePlatform) RemoveReaction(ctx context.Context, channelID, postID, glyph, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, removedReaction{postID, glyph, userID})
	return nil
}

func (p *fakePlatform) SendReminder(ctx context.Context, userID string, event *entities.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closedDMs[userID] {
		return domain.ErrDMClosed
	}
	p.reminders = append(p.reminders, userID)
	return nil
}

func (p *fakePlatform) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transient = append(p.transient, content)
	return nil
}

type fakeMembers struct {
	gone       map[string]bool
	moderators map[string]bool
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{gone: map[string]bool{}, moderators: map[string]bool{}}
}

func (m *fakeMembers) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	return !m.gone[userID], nil
}

func (m *fakeMembers) IsModerator(ctx context.Context, guildID, userID string) (bool, error) {
	return m.moderators[userID], nil
}

// fakeConversation answers Ask from a script; an error entry is returned as is.
type fakeConversation struct {
	mu      sync.Mutex
	answers []any
	asked   []output.Message
	told    []output.Message
}

func (c *fakeConversation) script(answers ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, answers...)
}

func (c *fakeConversation) Ask(ctx context.Context, userID string, msg output.Message, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, msg)
	if len(c.answers) == 0 {
		return "", domain.ErrInputTimeout
	}
	next := c.answers[0]
	c.answers = c.answers[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (c *fakeConversation) Tell(ctx context.Context, userID string, msg output.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.told = append(c.told, msg)
	return nil
}

func (c *fakeConversation) lastTold() output.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.told) == 0 {
		return output.Message{}
	}
	return c.told[len(c.told)-1]
}

// env bundles the fakes behind one Deps.
type env struct {
	store    *fakeStore
	platform *fakePlatform
	members  *fakeMembers
	conv     *fakeConversation
	deps     Deps
	now      time.Time
}

const (
	testGuild   = "g1"
	testChannel = "c1"
)

func newEnv() *env {
	e := &env{
		store:    newFakeStore(),
		platform: newFakePlatform(),
		members:  newFakeMembers(),
		conv:     &fakeConversation{},
		now:      time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	e.deps = Deps{
		Store:        e.store,
		Cache:        NewEventCache(),
		Platform:     e.platform,
		Members:      e.members,
		Conversation: e.conv,
		Location:     time.UTC,
		Now:          func() time.Time { return e.now },
	}
	return e
}

// seed stores and caches an event with a live post.
func (e *env) seed(postID string, max int, start time.Time) *entities.Event {
	ev, err := entities.NewEvent(entities.EventParams{
		ID:           1,
		GuildID:      testGuild,
		ChannelID:    testChannel,
		Creator:      "creator",
		CreateTime:   e.now.Add(-time.Hour),
		Name:         "Movie night",
		MaxAttendees: max,
		EventStart:   start,
	})
	if err != nil {
		panic(err)
	}
	ev.PostID = postID
	e.store.put(testGuild, ev)
	e.deps.Cache.Put(testGuild, ev)
	e.platform.addPost(postID, true)
	return ev
}

// cachedPosts lists the post ids the cache holds for guildID.
func cachedPosts(c *EventCache, guildID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.guilds[guildID]))
}

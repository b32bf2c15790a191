package application

import "sync"

// postLocks serializes mutations of a single (guild, post) record. A reload
// takes the guild exclusively so it never interleaves with a mutation.
type postLocks struct {
	mu     sync.Mutex
	posts  map[string]*postLock
	guilds map[string]*sync.RWMutex
}

type postLock struct {
	mu   sync.Mutex
	refs int
}

func newPostLocks() *postLocks {
	return &postLocks{
		posts:  make(map[string]*postLock),
		guilds: make(map[string]*sync.RWMutex),
	}
}

// Lock blocks until the post is free and returns the matching unlock function.
func (p *postLocks) Lock(guildID, postID string) func() {
	g := p.guild(guildID)
	g.RLock()
	unlockPost := p.lockPost(guildID + "/" + postID)
	return func() {
		unlockPost()
		g.RUnlock()
	}
}

// LockGuild waits for every post mutation of the guild to finish and blocks new ones.
func (p *postLocks) LockGuild(guildID string) func() {
	g := p.guild(guildID)
	g.Lock()
	return g.Unlock
}

// lockAdditional locks a second post of a guild whose read side the caller
// already holds through Lock. Taking the guild lock again could deadlock
// behind a waiting LockGuild.
func (p *postLocks) lockAdditional(guildID, postID string) func() {
	return p.lockPost(guildID + "/" + postID)
}

func (p *postLocks) guild(guildID string) *sync.RWMutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.guilds[guildID]
	if !ok {
		g = &sync.RWMutex{}
		p.guilds[guildID] = g
	}
	return g
}

func (p *postLocks) lockPost(key string) func() {
	p.mu.Lock()
	l, ok := p.posts[key]
	if !ok {
		l = &postLock{}
		p.posts[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.posts, key)
		}
		p.mu.Unlock()
	}
}

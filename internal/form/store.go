package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kdduha/sportsclass/internal/metrics"
)

// Store keeps one controller per session ID in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Controller
	ttl      time.Duration
	newFn    func() *Controller
	now      func() time.Time
}

func NewStore(ttl time.Duration, newFn func() *Controller) *Store {
	return &Store{
		sessions: make(map[string]*Controller),
		ttl:      ttl,
		newFn:    newFn,
		now:      time.Now,
	}
}

// Get returns the controller for id, creating a session under a fresh ID
// when id is unknown. The returned ID is the one to hand back to the client.
func (s *Store) Get(id string) (string, *Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if c, ok := s.sessions[id]; ok {
		c.touch(now)
		return id, c
	}

	id = uuid.NewString()
	c := s.newFn()
	c.touch(now)
	s.sessions[id] = c
	metrics.SetSessions(len(s.sessions))
	return id, c
}

// Lookup returns the controller for id without creating one.
func (s *Store) Lookup(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[id]
	if ok {
		c.touch(s.now())
	}
	return c, ok
}

// Sweep drops sessions idle for longer than the TTL. Sessions with a
// submission in flight are kept.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, c := range s.sessions {
		idle, loading := c.idleSince(now)
		if idle > s.ttl && !loading {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.SetSessions(len(s.sessions))
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

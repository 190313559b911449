package cart

import (
	"sync"
	"time"

	"github.com/tair/till-pos/internal/pos/domain"
)

// maxSweepInterval bounds how long idle carts linger past their deadline
const maxSweepInterval = time.Minute

type entry struct {
	mu   sync.Mutex
	cart *Cart

	// guarded by Sessions.mu
	lastUsed time.Time
	busy     int
}

// Sessions holds one cart per till session. Carts untouched for longer than
// the idle timeout are evicted; a zero timeout keeps them until discarded.
type Sessions struct {
	mu        sync.Mutex
	entries   map[string]*entry
	clock     domain.Clock
	idle      time.Duration
	lastSweep time.Time
}

// NewSessions creates an empty registry
func NewSessions(clock domain.Clock, idle time.Duration) *Sessions {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Sessions{
		entries:   make(map[string]*entry),
		clock:     clock,
		idle:      idle,
		lastSweep: clock.Now(),
	}
}

func (s *Sessions) acquire(sessionID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.idle > 0 && now.Sub(s.lastSweep) >= min(s.idle, maxSweepInterval) {
		s.sweepLocked(now)
	}

	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{cart: New()}
		s.entries[sessionID] = e
	}
	e.lastUsed = now
	e.busy++
	return e
}

func (s *Sessions) release(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.lastUsed = s.clock.Now()
	e.busy--
}

// Do runs fn with exclusive access to the session's cart, creating an empty
// cart on first use. Calls for the same session are serialized.
func (s *Sessions) Do(sessionID string, fn func(c *Cart) error) error {
	e := s.acquire(sessionID)
	defer s.release(e)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.cart)
}

// Discard forgets the session's cart
func (s *Sessions) Discard(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
}

// Sweep evicts idle carts now and returns how many were dropped
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idle <= 0 {
		return 0
	}
	return s.sweepLocked(s.clock.Now())
}

func (s *Sessions) sweepLocked(now time.Time) int {
	s.lastSweep = now
	evicted := 0
	for id, e := range s.entries {
		if e.busy == 0 && now.Sub(e.lastUsed) >= s.idle {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len is the number of sessions holding a cart
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

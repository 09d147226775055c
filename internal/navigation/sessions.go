package navigation

import (
	"context"
	"sync"
	"time"
)

// Sessions holds one Stack per browser session. Stacks are created on
// first use, dropped on logout and swept once idle for longer than the
// idle timeout.
type Sessions struct {
	mu        sync.Mutex
	stacks    map[string]*session
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type session struct {
	stack *Stack
	seen  time.Time
}

// SessionsOption configures a Sessions registry
type SessionsOption func(*Sessions)

// WithIdleTimeout forgets stacks not touched within d. Zero keeps them
// until Drop.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) { s.idle = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// NewSessions creates an empty registry
func NewSessions(opts ...SessionsOption) *Sessions {
	s := &Sessions{stacks: make(map[string]*session), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Get returns the stack for id, creating an empty one if needed
func (s *Sessions) Get(id string) *Stack {
	return s.Load(id, nil)
}

// Load returns the stack for id. When the registry has none (e.g. after a
// restart) it is rebuilt from saved; a saved state that fails to restore
// yields an empty stack.
func (s *Sessions) Load(id string, saved *State) *Stack {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeSweep(now)
	if e, ok := s.stacks[id]; ok {
		e.seen = now
		return e.stack
	}
	st := NewStack()
	if saved != nil {
		if err := st.Restore(*saved); err != nil {
			st = NewStack()
		}
	}
	s.stacks[id] = &session{stack: st, seen: now}
	return st
}

// Drop forgets the stack for id
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stacks, id)
}

// Sweep removes stacks idle for longer than the idle timeout and returns
// how many were removed
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep(s.now())
}

// Run sweeps every interval until ctx is done
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// maybeSweep amortizes sweeping over Load calls, at most once per timeout
func (s *Sessions) maybeSweep(now time.Time) {
	if s.idle > 0 && now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
	}
}

func (s *Sessions) sweep(now time.Time) int {
	s.lastSweep = now
	if s.idle <= 0 {
		return 0
	}
	removed := 0
	for id, e := range s.stacks {
		if now.Sub(e.seen) > s.idle {
			delete(s.stacks, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live stacks
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stacks)
}

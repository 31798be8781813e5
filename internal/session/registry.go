package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry is the single source of truth for live sessions. All mutation goes
// through its lock; callers only ever see *Session handles or snapshots.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	onEvict  func(Snapshot)
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put registers a fully-constructed session. Duplicate ids are rejected so a
// session is never visible in two states at once.
func (r *Registry) Put(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID()]; ok {
		return ErrDuplicateID
	}
	r.sessions[s.ID()] = s
	return nil
}

// SetOnEvict registers a hook called with the final snapshot of every session
// the sweeper evicts. Set once, before the sweeper starts.
func (r *Registry) SetOnEvict(fn func(Snapshot)) {
	r.mu.Lock()
	r.onEvict = fn
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns all sessions; filters are applied by the callers below.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) ListByGame(gameID string) []*Session {
	out := []*Session{}
	for _, s := range r.List() {
		if s.Snapshot().GameID == gameID {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) ListByOwner(owner string) []*Session {
	out := []*Session{}
	for _, s := range r.List() {
		if s.Owner() == owner {
			out = append(out, s)
		}
	}
	return out
}

// SweepExpired evicts sessions whose socket has been closed longer than
// closeGrace (kept that long for status queries) and force-closes sessions
// idle longer than idleMax. Returns the evicted ids.
func (r *Registry) SweepExpired(now time.Time, closeGrace, idleMax time.Duration) []string {
	var evicted []string
	for _, s := range r.List() {
		if closedAt, closed := s.closedSince(); closed {
			if now.Sub(closedAt) >= closeGrace {
				r.Remove(s.ID())
				evicted = append(evicted, s.ID())
				r.mu.RLock()
				hook := r.onEvict
				r.mu.RUnlock()
				if hook != nil {
					hook(s.Snapshot())
				}
			}
			continue
		}
		if idleMax > 0 && now.Sub(s.Snapshot().LastActivity) >= idleMax {
			log.Info().Str("session_id", s.ID()).Msg("idle session forced closed")
			s.Close()
		}
	}
	return evicted
}

// StartSweeper runs SweepExpired on interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval, closeGrace, idleMax time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if ids := r.SweepExpired(now, closeGrace, idleMax); len(ids) > 0 {
					log.Info().Strs("session_ids", ids).Msg("sessions evicted")
				}
			}
		}
	}()
}

package session

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// closedSession builds a registry-only session whose socket is already gone.
func closedSession(id, gameID, owner string, role Role, closedAt time.Time) *Session {
	return &Session{
		id:       id,
		gameID:   gameID,
		owner:    owner,
		role:     role,
		state:    StateClosed,
		closedAt: closedAt,
	}
}

func liveSession(id, gameID, owner string, lastActivity time.Time) *Session {
	return &Session{
		id:           id,
		gameID:       gameID,
		owner:        owner,
		role:         RoleBot,
		state:        StateActive,
		lastActivity: lastActivity,
	}
}

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()
	s := closedSession("a", "g1", "owner-1", RolePrimary, time.Now())
	if err := r.Put(s); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := r.Put(s); err != ErrDuplicateID {
		t.Fatalf("duplicate Put() error = %v, want ErrDuplicateID", err)
	}
	got, ok := r.Get("a")
	if !ok || got != s {
		t.Fatalf("Get() = %v, %v", got, ok)
	}
	r.Remove("a")
	if _, ok := r.Get("a"); ok {
		t.Fatal("session still present after Remove")
	}
}

func TestRegistryFilters(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	_ = r.Put(closedSession("a", "g1", "alice", RolePrimary, now))
	_ = r.Put(closedSession("b", "g1", "bob", RoleBot, now))
	_ = r.Put(closedSession("c", "g2", "alice", RoleBot, now))

	if got := len(r.ListByGame("g1")); got != 2 {
		t.Fatalf("ListByGame(g1) = %d sessions, want 2", got)
	}
	if got := len(r.ListByOwner("alice")); got != 2 {
		t.Fatalf("ListByOwner(alice) = %d sessions, want 2", got)
	}
	if got := len(r.ListByOwner("nobody")); got != 0 {
		t.Fatalf("ListByOwner(nobody) = %d sessions, want 0", got)
	}
}

func TestRegistryConcurrentPutRemove(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("s-%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Put(closedSession(id, "g", "o", RoleBot, time.Now()))
		}()
		go func() {
			defer wg.Done()
			r.Remove(id)
		}()
	}
	wg.Wait()
	// every remaining entry must be fully constructed
	for _, s := range r.List() {
		if s.Snapshot().ID == "" {
			t.Fatal("partially constructed session visible")
		}
	}
}

func TestSweepExpiredEvictsClosedSessions(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	_ = r.Put(closedSession("old", "g", "o", RoleBot, now.Add(-time.Minute)))
	_ = r.Put(closedSession("recent", "g", "o", RoleBot, now.Add(-5*time.Second)))
	_ = r.Put(liveSession("live", "g", "o", now))

	evicted := r.SweepExpired(now, 30*time.Second, 5*time.Minute)
	if len(evicted) != 1 || evicted[0] != "old" {
		t.Fatalf("evicted = %v, want [old]", evicted)
	}
	if _, ok := r.Get("recent"); !ok {
		t.Fatal("recently closed session evicted too early")
	}
	if _, ok := r.Get("live"); !ok {
		t.Fatal("live session must never be evicted")
	}
}

func TestSweepExpiredCallsEvictHook(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	var evicted []Snapshot
	r.SetOnEvict(func(snap Snapshot) { evicted = append(evicted, snap) })
	_ = r.Put(closedSession("old", "g", "o", RoleBot, now.Add(-time.Minute)))
	_ = r.Put(liveSession("live", "g", "o", now))

	r.SweepExpired(now, 30*time.Second, 5*time.Minute)
	if len(evicted) != 1 || evicted[0].ID != "old" {
		t.Fatalf("evict hook snapshots = %v, want one for old", evicted)
	}
}

func TestSweepExpiredClosesIdleSessions(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	idle := liveSession("idle", "g", "o", now.Add(-10*time.Minute))
	_ = r.Put(idle)

	r.SweepExpired(now, 30*time.Second, 5*time.Minute)
	if st := idle.Snapshot().State; st != StateClosed {
		t.Fatalf("idle session state = %s, want closed", st)
	}
}

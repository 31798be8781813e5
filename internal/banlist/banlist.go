// Package banlist keeps an in-memory set of owners barred from creating
// sessions or searches. Administrative state only; it does not survive
// restarts.
package banlist

import (
	"sync"
	"time"
)

type Entry struct {
	Owner    string    `json:"owner"`
	Reason   string    `json:"reason,omitempty"`
	BannedAt time.Time `json:"banned_at"`
}

type List struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *List {
	return &List{entries: make(map[string]Entry)}
}

func (l *List) Ban(owner, reason string) {
	l.mu.Lock()
	l.entries[owner] = Entry{Owner: owner, Reason: reason, BannedAt: time.Now()}
	l.mu.Unlock()
}

func (l *List) Unban(owner string) {
	l.mu.Lock()
	delete(l.entries, owner)
	l.mu.Unlock()
}

func (l *List) IsBanned(owner string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[owner]
	return ok
}

func (l *List) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	return out
}

package prober

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
	StatusFound    Status = "found"
)

// maxLogEntries bounds the per-job log; older entries are dropped.
const maxLogEntries = 100

// Found is an accepted candidate: validated by the remote and confirmed
// not-yet-started by the liveness sub-probe.
type Found struct {
	Pin         string          `json:"pin"`
	PlayID      string          `json:"play_id"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// Job is one PIN-space search. Exactly one batch loop advances it at a time.
type Job struct {
	id    string
	owner string

	mu        sync.Mutex
	startPin  int
	current   int
	last      *int
	status    Status
	found     *Found
	log       []string
	startedAt time.Time
	cancel    context.CancelFunc
}

// Snapshot is a copy of the job state for status queries.
type Snapshot struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	StartPin  int       `json:"start_pin"`
	Current   int       `json:"current_pin"`
	Last      *int      `json:"last_candidate,omitempty"`
	Status    Status    `json:"status"`
	Found     *Found    `json:"found,omitempty"`
	Log       []string  `json:"log"`
	StartedAt time.Time `json:"started_at"`
}

func (j *Job) ID() string    { return j.id }
func (j *Job) Owner() string { return j.owner }

func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := Snapshot{
		ID:        j.id,
		Owner:     j.owner,
		StartPin:  j.startPin,
		Current:   j.current,
		Status:    j.status,
		Log:       append([]string(nil), j.log...),
		StartedAt: j.startedAt,
	}
	if j.last != nil {
		v := *j.last
		snap.Last = &v
	}
	if j.found != nil {
		f := *j.found
		snap.Found = &f
	}
	return snap
}

func (j *Job) appendLog(format string, args ...any) {
	j.mu.Lock()
	j.log = append(j.log, fmt.Sprintf(format, args...))
	if n := len(j.log); n > maxLogEntries {
		j.log = j.log[n-maxLogEntries:]
	}
	j.mu.Unlock()
}

func (j *Job) setCurrent(pin int) {
	j.mu.Lock()
	j.current = pin
	v := pin
	j.last = &v
	j.mu.Unlock()
}

// stopping reports whether a stop was requested.
func (j *Job) stopping() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status == StatusStopping
}

func (j *Job) finish(status Status, found *Found) {
	j.mu.Lock()
	j.status = status
	if found != nil {
		j.found = found
	}
	j.mu.Unlock()
}

// Package prober searches the numeric PIN space for joinable Panquiz games:
// fixed-size concurrent validation batches plus a short liveness sub-probe
// that filters out games that already started.
package prober

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/panquiz"
)

var (
	ErrAlreadyRunning = errors.New("search_already_running")
	ErrJobNotFound    = errors.New("search_not_found")
	ErrInvalidStart   = errors.New("invalid_start_pin")
)

const (
	DefaultBatchSize = 50
	SpaceMax         = 999999
)

// Validator answers whether a PIN identifies a live game.
type Validator interface {
	ValidatePin(ctx context.Context, pin string) (*panquiz.PinValidation, error)
}

// LivenessFunc reports whether the candidate game is still joinable (has not
// started yet). Implemented by the session-based sub-probe; swapped in tests.
type LivenessFunc func(ctx context.Context, pin, playID string) (bool, error)

// Manager owns all probe jobs. One running job per owner.
type Manager struct {
	validator Validator
	liveness  LivenessFunc
	batchSize int
	spaceMax  int

	mu      sync.Mutex
	jobs    map[string]*Job
	byOwner map[string]*Job
}

func NewManager(validator Validator, liveness LivenessFunc, batchSize int) *Manager {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Manager{
		validator: validator,
		liveness:  liveness,
		batchSize: batchSize,
		spaceMax:  SpaceMax,
		jobs:      make(map[string]*Job),
		byOwner:   make(map[string]*Job),
	}
}

// Start launches a search from startPin for owner. A second start while the
// owner's previous job is running or stopping is rejected, not queued.
func (m *Manager) Start(startPin int, owner string) (string, error) {
	if startPin < 0 || startPin > m.spaceMax {
		return "", ErrInvalidStart
	}

	m.mu.Lock()
	if prev, ok := m.byOwner[owner]; ok {
		if st := prev.Snapshot().Status; st == StatusRunning || st == StatusStopping {
			m.mu.Unlock()
			return "", ErrAlreadyRunning
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		id:        ulid.Make().String(),
		owner:     owner,
		startPin:  startPin,
		current:   startPin,
		status:    StatusRunning,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	m.jobs[job.id] = job
	m.byOwner[owner] = job
	m.mu.Unlock()

	job.appendLog("search started at %06d", startPin)
	log.Info().Str("job_id", job.id).Str("owner", owner).Int("start_pin", startPin).Msg("pin search started")
	go m.run(ctx, job)
	return job.id, nil
}

// Stop requests cancellation. Observed at batch and sub-probe boundaries;
// in-flight batch validations run to completion, while an in-flight liveness
// sub-probe is aborted via the job context.
func (m *Manager) Stop(jobID string) error {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	m.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	job.mu.Lock()
	if job.status == StatusRunning {
		job.status = StatusStopping
	}
	cancel := job.cancel
	job.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// Status returns a snapshot of the job.
func (m *Manager) Status(jobID string) (Snapshot, error) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrJobNotFound
	}
	return job.Snapshot(), nil
}

// StatusByOwner returns the owner's most recent job, if any.
func (m *Manager) StatusByOwner(owner string) (Snapshot, bool) {
	m.mu.Lock()
	job, ok := m.byOwner[owner]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	return job.Snapshot(), true
}

type batchResult struct {
	pin        int
	validation *panquiz.PinValidation
	err        error
}

func (m *Manager) run(ctx context.Context, job *Job) {
	for base := job.Snapshot().StartPin; base <= m.spaceMax; base += m.batchSize {
		if ctx.Err() != nil || job.stopping() {
			job.appendLog("search stopped")
			job.finish(StatusStopped, nil)
			log.Info().Str("job_id", job.id).Msg("pin search stopped")
			return
		}

		results := m.probeBatch(base)
		for _, res := range results {
			job.setCurrent(res.pin)
			pin := fmt.Sprintf("%06d", res.pin)
			switch {
			case res.err != nil:
				job.appendLog("pin %s: transport error: %v", pin, res.err)
			case res.validation.Joinable():
				if ctx.Err() != nil || job.stopping() {
					job.appendLog("pin %s: valid, stop requested before liveness probe", pin)
					continue
				}
				job.appendLog("pin %s: valid, probing liveness", pin)
				available, err := m.liveness(ctx, pin, res.validation.PlayID)
				if err != nil {
					job.appendLog("pin %s: liveness probe failed: %v", pin, err)
					continue
				}
				if !available {
					job.appendLog("pin %s: game already started, skipping", pin)
					continue
				}
				job.appendLog("pin %s: available game found", pin)
				job.finish(StatusFound, &Found{
					Pin:         pin,
					PlayID:      res.validation.PlayID,
					RawResponse: res.validation.Raw,
				})
				log.Info().Str("job_id", job.id).Str("pin", pin).Msg("available game found")
				return
			default:
				job.appendLog("pin %s: rejected", pin)
			}
		}
	}
	job.appendLog("search exhausted the pin space")
	job.finish(StatusStopped, nil)
	log.Info().Str("job_id", job.id).Msg("pin search exhausted")
}

// probeBatch validates one batch concurrently and returns results in
// candidate order. The whole batch resolves before the next one starts, and
// a stop request never interrupts its in-flight validations; only the
// liveness sub-probe runs on the cancelable job context.
func (m *Manager) probeBatch(base int) []batchResult {
	n := m.batchSize
	if base+n-1 > m.spaceMax {
		n = m.spaceMax - base + 1
	}
	results := make([]batchResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pin := base + i
			v, err := m.validator.ValidatePin(context.Background(), fmt.Sprintf("%06d", pin))
			results[i] = batchResult{pin: pin, validation: v, err: err}
		}(i)
	}
	wg.Wait()
	return results
}

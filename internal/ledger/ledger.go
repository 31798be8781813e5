// Package ledger records terminal game outcomes. The store is optional; a
// nil-store ledger accepts writes and drops them.
package ledger

import (
	"context"

	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/store"
)

type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

func (l *Ledger) Enabled() bool {
	return l != nil && l.Store != nil
}

// Record persists one outcome. Errors are logged, not returned: losing a
// ledger row must never fail the session teardown path.
func (l *Ledger) Record(ctx context.Context, o store.GameOutcome) {
	if !l.Enabled() {
		return
	}
	if _, err := l.Store.RecordOutcome(ctx, o); err != nil {
		log.Error().Err(err).Str("session_id", o.SessionID).Msg("record outcome failed")
	}
}

func (l *Ledger) List(ctx context.Context, f store.OutcomeFilter, limit, offset int) ([]store.GameOutcome, error) {
	if !l.Enabled() {
		return []store.GameOutcome{}, nil
	}
	return l.Store.ListOutcomes(ctx, f, limit, offset)
}

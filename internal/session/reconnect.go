package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/hub"
)

const reconnectTimeout = 30 * time.Second

// Reconnector reacts to a primary session's restart signal: after a settle
// delay it reconnects the primary under its existing id, then every bot that
// shared the old game, sequentially. Each restart runs as its own goroutine
// with its own error boundary; unrelated sessions are never blocked.
type Reconnector struct {
	registry *Registry
	settle   time.Duration
}

func NewReconnector(registry *Registry, settle time.Duration) *Reconnector {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Reconnector{registry: registry, settle: settle}
}

// OnRestart is the session callback. It returns immediately.
func (r *Reconnector) OnRestart(s *Session, restart hub.Restart) {
	go r.run(s, restart)
}

func (r *Reconnector) run(primary *Session, restart hub.Restart) {
	log.Info().
		Str("session_id", primary.ID()).
		Str("new_game_id", restart.NewGameID).
		Dur("settle", r.settle).
		Msg("restart signaled, reconnecting")

	// Collect bots before anything reconnects; their gameID flips as we go.
	var bots []*Session
	for _, s := range r.registry.ListByGame(restart.OldGameID) {
		if s.ID() == primary.ID() || s.Role() != RoleBot {
			continue
		}
		if st := s.Snapshot().State; connected(st) || st == StateRestarting {
			bots = append(bots, s)
		}
	}

	// Let the remote finish tearing the old game down.
	time.Sleep(r.settle)

	ctx, cancel := context.WithTimeout(context.Background(), reconnectTimeout)
	defer cancel()

	if err := primary.Reconnect(ctx, restart.NewGameID); err != nil {
		log.Error().Err(err).Str("session_id", primary.ID()).Msg("primary reconnect failed")
	}
	for _, bot := range bots {
		if err := bot.Reconnect(ctx, restart.NewGameID); err != nil {
			log.Error().Err(err).Str("session_id", bot.ID()).Msg("bot reconnect failed")
			continue
		}
		log.Info().Str("session_id", bot.ID()).Msg("bot reconnected")
	}
}

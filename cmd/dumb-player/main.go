// dumb-player joins one quiz from the terminal and plays it on auto-answer.
// Useful for smoke-testing against a live game without the full server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/config"
	"panquiz-swarm/internal/logging"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/session"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadPlayer()
	if err != nil {
		log.Fatal().Err(err).Msg("load player config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := panquiz.New(cfg.BaseURL)
	v, err := client.ValidatePin(ctx, cfg.GamePin)
	if err != nil {
		log.Fatal().Err(err).Msg("pin validation failed")
	}
	if !v.Joinable() {
		log.Fatal().Str("pin", cfg.GamePin).Msg("no joinable game behind this pin")
	}

	registry := session.NewRegistry()
	recon := session.NewReconnector(registry, 2*time.Second)
	sess, err := session.Dial(ctx, client, "player", v.PlayID, session.Options{
		DisplayName:     cfg.DisplayName,
		Role:            session.RolePrimary,
		GamePin:         cfg.GamePin,
		AutoAnswer:      cfg.AutoAnswer,
		AnswerLatencyMS: cfg.AnswerLatencyMS,
		OnRestart:       recon.OnRestart,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("join failed")
	}
	if err := registry.Put(sess); err != nil {
		log.Fatal().Err(err).Msg("register session failed")
	}
	log.Info().Str("game_id", v.PlayID).Str("name", cfg.DisplayName).Msg("joined")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("interrupted, closing")
			sess.Close()
			return
		case <-ticker.C:
			snap := sess.Snapshot()
			switch snap.State {
			case session.StateClosed, session.StateFailed:
				if snap.Medal != nil {
					log.Info().Str("place", snap.Medal.Place).Int("answered", snap.QuestionsAnswered).Msg("game over")
				} else {
					log.Info().Str("state", string(snap.State)).Int("answered", snap.QuestionsAnswered).Msg("session ended")
				}
				return
			default:
				if snap.Question != nil {
					log.Debug().Int("number", snap.Question.Number).Msg("question pending")
				}
			}
		}
	}
}

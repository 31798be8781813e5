package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/app/search"
	"panquiz-swarm/internal/app/swarm"
	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/config"
	"panquiz-swarm/internal/ledger"
	"panquiz-swarm/internal/logging"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/prober"
	"panquiz-swarm/internal/session"
	"panquiz-swarm/internal/store"
	httptransport "panquiz-swarm/internal/transport/http"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	var st *store.Store
	if cfg.PostgresDSN != "" {
		st, err = store.New(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		if err := st.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		log.Info().Msg("outcome ledger enabled")
	}

	client := panquiz.New(cfg.PanquizBaseURL)
	registry := session.NewRegistry()
	recon := session.NewReconnector(registry, time.Duration(cfg.ReconnectSettleMS)*time.Millisecond)
	led := ledger.New(st)
	bans := banlist.New()

	swarmSvc := swarm.NewService(client, registry, recon, led, bans, swarm.Defaults{
		AnswerLatencyMS: cfg.AnswerLatencyMS,
		DisconnectGrace: time.Duration(cfg.DisconnectGraceSec) * time.Second,
	})
	liveness := prober.NewLivenessProbe(client, cfg.ProbeDecoyName,
		time.Duration(cfg.ProbeLivenessTimeoutMS)*time.Millisecond)
	searchSvc := search.NewService(prober.NewManager(client, liveness, cfg.ProbeBatchSize), bans)

	registry.StartSweeper(context.Background(),
		time.Duration(cfg.SweepIntervalSec)*time.Second,
		time.Duration(cfg.CloseGraceSec)*time.Second,
		time.Duration(cfg.IdleMaxSec)*time.Second)

	r := httptransport.NewRouter(cfg, swarmSvc, searchSvc, led, bans)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("upstream", cfg.PanquizBaseURL).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

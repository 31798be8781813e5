package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/app/search"
	"panquiz-swarm/internal/app/swarm"
	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/config"
	"panquiz-swarm/internal/ledger"
	"panquiz-swarm/internal/mcpserver"
)

func NewRouter(cfg config.ServerConfig, swarmSvc *swarm.Service, searchSvc *search.Service,
	led *ledger.Ledger, bans *banlist.List) *chi.Mux {
	swarmHandlers := NewSwarmHandlers(swarmSvc)
	searchHandlers := NewSearchHandlers(searchSvc)
	adminHandlers := NewAdminHandlers(led, bans)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	if cfg.MCPEnabled {
		mcpSrv := mcpserver.New(swarmSvc, searchSvc)
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(BodyCaptureMiddleware(4096))

		r.Post("/validate-pin", swarmHandlers.ValidatePin())
		r.Post("/join", swarmHandlers.Join())
		r.Post("/bulk-join", swarmHandlers.BulkJoin())
		r.Get("/sessions", swarmHandlers.Sessions())
		r.Get("/sessions/{session_id}", swarmHandlers.Session())
		r.Post("/sessions/{session_id}/auto-answer", swarmHandlers.AutoAnswer())
		r.Post("/sessions/{session_id}/answer", swarmHandlers.Answer())
		r.Post("/sessions/{session_id}/disconnect", swarmHandlers.Disconnect())
		r.Post("/bulk-disconnect", swarmHandlers.BulkDisconnect())

		r.Post("/pinsearch/start", searchHandlers.Start())
		r.Post("/pinsearch/stop", searchHandlers.Stop())
		r.Get("/pinsearch/status", searchHandlers.Status())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/ledger", adminHandlers.Ledger())
			r.Get("/bans", adminHandlers.Bans())
			r.Post("/bans", adminHandlers.Ban())
			r.Delete("/bans/{owner}", adminHandlers.Unban())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}

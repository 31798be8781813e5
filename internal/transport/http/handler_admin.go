package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/ledger"
	"panquiz-swarm/internal/store"
)

type AdminHandlers struct {
	led  *ledger.Ledger
	bans *banlist.List
}

func NewAdminHandlers(led *ledger.Ledger, bans *banlist.List) *AdminHandlers {
	return &AdminHandlers{led: led, bans: bans}
}

// Health reports liveness; the database section only appears when the
// outcome ledger is configured.
func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.led.Enabled() {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "off"})
			return
		}
		if err := h.led.Store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		f := store.OutcomeFilter{
			Owner:   r.URL.Query().Get("owner"),
			GamePin: r.URL.Query().Get("game_pin"),
		}
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.From = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				f.To = &t
			}
		}
		items, err := h.led.List(r.Context(), f, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *AdminHandlers) Bans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": h.bans.Entries()})
	}
}

func (h *AdminHandlers) Ban() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Owner  string `json:"owner"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Owner == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		h.bans.Ban(body.Owner, body.Reason)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Unban() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.bans.Unban(chi.URLParam(r, "owner"))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

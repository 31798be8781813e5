package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"panquiz-swarm/internal/app/search"
	"panquiz-swarm/internal/prober"
)

type SearchHandlers struct {
	svc *search.Service
}

func NewSearchHandlers(svc *search.Service) *SearchHandlers {
	return &SearchHandlers{svc: svc}
}

func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prober.ErrInvalidStart):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_start_pin")
	case errors.Is(err, prober.ErrAlreadyRunning):
		WriteHTTPError(w, http.StatusConflict, "search_already_running")
	case errors.Is(err, search.ErrNoSearch), errors.Is(err, prober.ErrJobNotFound):
		WriteHTTPError(w, http.StatusNotFound, "search_not_found")
	case errors.Is(err, search.ErrOwnerBanned):
		WriteHTTPError(w, http.StatusForbidden, "owner_banned")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (h *SearchHandlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			StartPin int `json:"startPin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		jobID, err := h.svc.Start(body.StartPin, OwnerFromRequest(r))
		if err != nil {
			writeSearchError(w, err)
			return
		}
		metricSearchStartTotal.Add(1)
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"jobId": jobID})
	}
}

func (h *SearchHandlers) Stop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Stop(OwnerFromRequest(r)); err != nil {
			writeSearchError(w, err)
			return
		}
		metricSearchStopTotal.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *SearchHandlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.svc.Status(OwnerFromRequest(r))
		if err != nil {
			writeSearchError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(snap)
	}
}

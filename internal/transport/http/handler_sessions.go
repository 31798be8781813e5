package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"panquiz-swarm/internal/app/swarm"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/session"
)

type SwarmHandlers struct {
	svc *swarm.Service
}

func NewSwarmHandlers(svc *swarm.Service) *SwarmHandlers {
	return &SwarmHandlers{svc: svc}
}

func writeSwarmError(w http.ResponseWriter, err error) {
	var te *panquiz.TransportError
	switch {
	case errors.Is(err, swarm.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, swarm.ErrSessionNotFound):
		WriteHTTPError(w, http.StatusNotFound, "session_not_found")
	case errors.Is(err, swarm.ErrPinRejected):
		WriteHTTPError(w, http.StatusNotFound, "pin_rejected")
	case errors.Is(err, swarm.ErrOwnerBanned):
		WriteHTTPError(w, http.StatusForbidden, "owner_banned")
	case errors.Is(err, session.ErrNoQuestion):
		WriteHTTPError(w, http.StatusConflict, "no_pending_question")
	case errors.Is(err, session.ErrNotConnected):
		WriteHTTPError(w, http.StatusConflict, "not_connected")
	case errors.Is(err, panquiz.ErrNoAccessToken), errors.Is(err, panquiz.ErrNoConnectionToken):
		WriteHTTPError(w, http.StatusBadGateway, "negotiate_failed")
	case errors.As(err, &te):
		WriteHTTPError(w, http.StatusBadGateway, "upstream_error")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (h *SwarmHandlers) ValidatePin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PinCode string `json:"pinCode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		v, err := h.svc.ValidatePin(r.Context(), body.PinCode)
		if err != nil {
			writeSwarmError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pinCode":  body.PinCode,
			"joinable": v.Joinable(),
			"playId":   v.PlayID,
			"raw":      v.Raw,
		})
	}
}

func (h *SwarmHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req swarm.JoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		req.Owner = OwnerFromRequest(r)
		metricJoinTotal.Add(1)
		snap, err := h.svc.Join(r.Context(), req)
		if err != nil {
			metricJoinErrors.Add(1)
			writeSwarmError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func (h *SwarmHandlers) BulkJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req swarm.BulkJoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		req.Owner = OwnerFromRequest(r)
		resp, err := h.svc.BulkJoin(r.Context(), req)
		if err != nil {
			writeSwarmError(w, err)
			return
		}
		metricBulkJoinSessions.Add(int64(resp.Joined))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *SwarmHandlers) Sessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.svc.List(r.URL.Query().Get("game_id"), r.URL.Query().Get("owner"))
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *SwarmHandlers) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.svc.Get(chi.URLParam(r, "session_id"))
		if err != nil {
			writeSwarmError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func (h *SwarmHandlers) AutoAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		snap, err := h.svc.SetAutoAnswer(chi.URLParam(r, "session_id"), body.Enabled)
		if err != nil {
			writeSwarmError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(snap)
	}
}

func (h *SwarmHandlers) Answer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			AnswerIndex int `json:"answerIndex"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricAnswerSubmitTotal.Add(1)
		resp, err := h.svc.SubmitAnswer(chi.URLParam(r, "session_id"), body.AnswerIndex)
		if err != nil {
			metricAnswerSubmitErrors.Add(1)
			writeSwarmError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *SwarmHandlers) Disconnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Disconnect(chi.URLParam(r, "session_id")); err != nil {
			writeSwarmError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *SwarmHandlers) BulkDisconnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SessionIDs []string `json:"sessionIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		_ = json.NewEncoder(w).Encode(h.svc.BulkDisconnect(body.SessionIDs))
	}
}

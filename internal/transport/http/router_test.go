package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"panquiz-swarm/internal/app/search"
	"panquiz-swarm/internal/app/swarm"
	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/config"
	"panquiz-swarm/internal/ledger"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/prober"
	"panquiz-swarm/internal/session"
)

func newTestRouter(t *testing.T, adminKey string) (http.Handler, *banlist.List) {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/player/pin" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"playId":"","errorCode":1}`))
	}))
	t.Cleanup(backend.Close)

	pq := panquiz.New(backend.URL)
	registry := session.NewRegistry()
	bans := banlist.New()
	led := ledger.New(nil)
	swarmSvc := swarm.NewService(pq, registry, session.NewReconnector(registry, 0), led, bans, swarm.Defaults{})
	m := prober.NewManager(pq, nil, 5)
	searchSvc := search.NewService(m, bans)

	cfg := config.ServerConfig{AdminAPIKey: adminKey, MCPEnabled: false}
	return NewRouter(cfg, swarmSvc, searchSvc, led, bans), bans
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthzWithoutDatabase(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true || body["db"] != "off" {
		t.Fatalf("body = %v", body)
	}
}

func TestValidatePinEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := doJSON(t, h, http.MethodPost, "/api/validate-pin", `{"pinCode":"123456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["joinable"] != false {
		t.Fatalf("body = %v", body)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/validate-pin", `{"pinCode":"xyz"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestJoinRejectedPin(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := doJSON(t, h, http.MethodPost, "/api/join", `{"pinCode":"123456","playerName":"Ada"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "pin_rejected" {
		t.Fatalf("body = %v", body)
	}
}

func TestJoinSurfacesNegotiateFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/player/pin":
			_, _ = w.Write([]byte(`{"playId":"play-1","errorCode":0}`))
		case "/api/v1/playHub/negotiate":
			// valid JSON, no accessToken
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(backend.Close)

	pq := panquiz.New(backend.URL)
	registry := session.NewRegistry()
	bans := banlist.New()
	led := ledger.New(nil)
	swarmSvc := swarm.NewService(pq, registry, session.NewReconnector(registry, 0), led, bans, swarm.Defaults{})
	searchSvc := search.NewService(prober.NewManager(pq, nil, 5), bans)
	h := NewRouter(config.ServerConfig{MCPEnabled: false}, swarmSvc, searchSvc, led, bans)

	rec := doJSON(t, h, http.MethodPost, "/api/join", `{"pinCode":"123456","playerName":"Ada"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "negotiate_failed" {
		t.Fatalf("body = %v", body)
	}
}

func TestSessionEndpoints(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := doJSON(t, h, http.MethodGet, "/api/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/sessions/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/sessions/missing/answer", `{"answerIndex":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/bulk-disconnect", `{"sessionIds":["a","b"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Missing []string `json:"missing"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Missing) != 2 {
		t.Fatalf("missing = %v", body.Missing)
	}
}

func TestPinSearchEndpoints(t *testing.T) {
	h, _ := newTestRouter(t, "")

	rec := doJSON(t, h, http.MethodGet, "/api/pinsearch/status", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/pinsearch/start", `{"startPin":999990}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/pinsearch/start", `{"startPin":-5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAdminAuthAndBans(t *testing.T) {
	h, bans := newTestRouter(t, "secret")

	rec := doJSON(t, h, http.MethodGet, "/api/bans", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/bans", strings.NewReader(`{"owner":"192.0.2.1","reason":"abuse"}`))
	req.Header.Set("X-Admin-Key", "secret")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", out.Code, out.Body.String())
	}
	if !bans.IsBanned("192.0.2.1") {
		t.Fatal("owner should be banned")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/bans/192.0.2.1", nil)
	req.Header.Set("Authorization", "Bearer secret")
	out = httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", out.Code)
	}
	if bans.IsBanned("192.0.2.1") {
		t.Fatal("owner should be unbanned")
	}
}

func TestBannedOwnerCannotJoin(t *testing.T) {
	h, bans := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/join", strings.NewReader(`{"pinCode":"123456","playerName":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.7:4444"
	bans.Ban("192.0.2.7", "abuse")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body %s", rec.Code, rec.Body.String())
	}
}

func TestOwnerFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	if got := OwnerFromRequest(r); got != "10.1.2.3" {
		t.Fatalf("owner = %q", got)
	}
	r.RemoteAddr = "10.1.2.4"
	if got := OwnerFromRequest(r); got != "10.1.2.4" {
		t.Fatalf("owner = %q", got)
	}
}

package panquiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newNegotiateServer(t *testing.T, firstBody func(origin string) string, secondBody string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/playHub/negotiate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, firstBody(srv.URL))
	})
	mux.HandleFunc("/client/negotiate", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.URL.Query().Get("asrs_request_id"); got != "req-1" {
			t.Errorf("asrs_request_id = %q, want req-1", got)
		}
		fmt.Fprint(w, secondBody)
	})
	srv = httptest.NewServer(mux)
	return srv
}

func TestNegotiateComposesSocketURL(t *testing.T) {
	srv := newNegotiateServer(t,
		func(origin string) string {
			return fmt.Sprintf(`{"accessToken":"token-abc","url":"%s/client/?hub=playhub&asrs_request_id=req-1"}`, origin)
		},
		`{"connectionToken":"conn-tok","connectionId":"conn-id"}`,
	)
	defer srv.Close()

	desc, err := New(srv.URL).Negotiate(context.Background())
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if desc.ConnectionToken != "conn-tok" || desc.ConnectionID != "conn-id" {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
	if !strings.Contains(desc.SocketURL, "&id=conn-tok") {
		t.Fatalf("socket url missing connection token: %s", desc.SocketURL)
	}
	if !strings.Contains(desc.SocketURL, "&access_token=token-abc") {
		t.Fatalf("socket url missing access token: %s", desc.SocketURL)
	}
}

func TestNegotiateNoAccessToken(t *testing.T) {
	srv := newNegotiateServer(t,
		func(string) string { return `{"url":"wss://x/client/?asrs_request_id=req-1"}` },
		`{}`,
	)
	defer srv.Close()

	_, err := New(srv.URL).Negotiate(context.Background())
	if !errors.Is(err, ErrNoAccessToken) {
		t.Fatalf("Negotiate() error = %v, want ErrNoAccessToken", err)
	}
}

func TestNegotiateNoConnectionToken(t *testing.T) {
	srv := newNegotiateServer(t,
		func(origin string) string {
			return fmt.Sprintf(`{"accessToken":"token-abc","url":"%s/client/?asrs_request_id=req-1"}`, origin)
		},
		`{"connectionId":"only-id"}`,
	)
	defer srv.Close()

	_, err := New(srv.URL).Negotiate(context.Background())
	if !errors.Is(err, ErrNoConnectionToken) {
		t.Fatalf("Negotiate() error = %v, want ErrNoConnectionToken", err)
	}
}

func TestNegotiateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Negotiate(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Negotiate() error = %v, want *TransportError", err)
	}
}

func TestValidatePin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/player/pin" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		switch r.PostForm.Get("pinCode") {
		case "123456":
			fmt.Fprint(w, `{"playId":"play-1","errorCode":0}`)
		default:
			fmt.Fprint(w, `{"errorCode":1}`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ok, err := c.ValidatePin(context.Background(), "123456")
	if err != nil {
		t.Fatalf("ValidatePin() error = %v", err)
	}
	if !ok.Joinable() || ok.PlayID != "play-1" {
		t.Fatalf("unexpected validation: %+v", ok)
	}
	var raw map[string]any
	if err := json.Unmarshal(ok.Raw, &raw); err != nil {
		t.Fatalf("raw body not preserved: %v", err)
	}

	miss, err := c.ValidatePin(context.Background(), "000001")
	if err != nil {
		t.Fatalf("ValidatePin() error = %v", err)
	}
	if miss.Joinable() {
		t.Fatalf("errorCode 1 should not be joinable: %+v", miss)
	}
}

package swarm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/ledger"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/session"
)

// pinServer answers only the PIN validation endpoint; join paths that reach
// negotiation fail, which is enough for the request validation tests here.
func pinServer(t *testing.T, body string) *panquiz.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/player/pin" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return panquiz.New(srv.URL)
}

func newTestService(t *testing.T, client *panquiz.Client, bans *banlist.List) *Service {
	t.Helper()
	registry := session.NewRegistry()
	return NewService(client, registry, session.NewReconnector(registry, 0), ledger.New(nil), bans, Defaults{})
}

func TestValidatePinRejectsMalformedInput(t *testing.T) {
	s := newTestService(t, pinServer(t, `{"playId":"","errorCode":1}`), banlist.New())

	for _, pin := range []string{"", "12a456", "1234567"} {
		if _, err := s.ValidatePin(context.Background(), pin); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("ValidatePin(%q) error = %v, want ErrInvalidRequest", pin, err)
		}
	}

	v, err := s.ValidatePin(context.Background(), "123456")
	if err != nil {
		t.Fatalf("ValidatePin() error = %v", err)
	}
	if v.Joinable() {
		t.Fatal("errorCode 1 must not be joinable")
	}
}

func TestJoinUnknownPin(t *testing.T) {
	s := newTestService(t, pinServer(t, `{"playId":"","errorCode":1}`), banlist.New())

	_, err := s.Join(context.Background(), JoinRequest{PinCode: "123456", PlayerName: "Ada"})
	if !errors.Is(err, ErrPinRejected) {
		t.Fatalf("Join() error = %v, want ErrPinRejected", err)
	}
}

func TestJoinRequiresNameAndPin(t *testing.T) {
	s := newTestService(t, pinServer(t, `{"playId":"p","errorCode":0}`), banlist.New())

	if _, err := s.Join(context.Background(), JoinRequest{PinCode: "123456"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Join() without name error = %v, want ErrInvalidRequest", err)
	}
	if _, err := s.Join(context.Background(), JoinRequest{PlayerName: "Ada"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("Join() without pin error = %v, want ErrInvalidRequest", err)
	}
}

func TestJoinBannedOwner(t *testing.T) {
	bans := banlist.New()
	bans.Ban("mallory", "abuse")
	s := newTestService(t, pinServer(t, `{"playId":"p","errorCode":0}`), bans)

	_, err := s.Join(context.Background(), JoinRequest{PinCode: "123456", PlayerName: "Ada", Owner: "mallory"})
	if !errors.Is(err, ErrOwnerBanned) {
		t.Fatalf("Join() error = %v, want ErrOwnerBanned", err)
	}
	if _, err := s.BulkJoin(context.Background(), BulkJoinRequest{PinCode: "123456", BotNames: []string{"b1"}, Owner: "mallory"}); !errors.Is(err, ErrOwnerBanned) {
		t.Fatalf("BulkJoin() error = %v, want ErrOwnerBanned", err)
	}
}

func TestSessionLookupsOnEmptyRegistry(t *testing.T) {
	s := newTestService(t, pinServer(t, `{"playId":"","errorCode":1}`), banlist.New())

	if _, err := s.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.SetAutoAnswer("nope", true); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("SetAutoAnswer() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.SubmitAnswer("nope", 0); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("SubmitAnswer() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.SubmitAnswer("nope", -1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("SubmitAnswer(-1) error = %v, want ErrInvalidRequest", err)
	}
	if err := s.Disconnect("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Disconnect() error = %v, want ErrSessionNotFound", err)
	}

	if got := s.List("", ""); len(got.Items) != 0 {
		t.Fatalf("List() = %+v, want empty", got.Items)
	}

	resp := s.BulkDisconnect([]string{"a", "b"})
	if len(resp.Disconnected) != 0 || len(resp.Missing) != 2 {
		t.Fatalf("BulkDisconnect() = %+v", resp)
	}
}

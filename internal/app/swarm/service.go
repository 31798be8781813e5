// Package swarm is the application layer over the session registry: joining
// games, steering answers, and tearing sessions down.
package swarm

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/banlist"
	"panquiz-swarm/internal/ledger"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/session"
	"panquiz-swarm/internal/store"
)

// Defaults are the per-session knobs applied when a request leaves them unset.
type Defaults struct {
	AnswerLatencyMS int
	DisconnectGrace time.Duration
}

type Service struct {
	client   *panquiz.Client
	registry *session.Registry
	recon    *session.Reconnector
	led      *ledger.Ledger
	bans     *banlist.List
	defaults Defaults
}

func NewService(client *panquiz.Client, registry *session.Registry, recon *session.Reconnector,
	led *ledger.Ledger, bans *banlist.List, defaults Defaults) *Service {
	s := &Service{
		client:   client,
		registry: registry,
		recon:    recon,
		led:      led,
		bans:     bans,
		defaults: defaults,
	}
	registry.SetOnEvict(s.recordOutcome)
	return s
}

func validPin(pin string) bool {
	if pin == "" || len(pin) > 6 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *Service) ValidatePin(ctx context.Context, pin string) (*panquiz.PinValidation, error) {
	if !validPin(pin) {
		return nil, ErrInvalidRequest
	}
	return s.client.ValidatePin(ctx, pin)
}

// Join validates the PIN, dials a primary session, and registers it. Primary
// sessions carry the restart hook so the whole game group follows a PlayAgain.
func (s *Service) Join(ctx context.Context, req JoinRequest) (session.Snapshot, error) {
	if !validPin(req.PinCode) || req.PlayerName == "" {
		return session.Snapshot{}, ErrInvalidRequest
	}
	if s.bans != nil && s.bans.IsBanned(req.Owner) {
		return session.Snapshot{}, ErrOwnerBanned
	}
	v, err := s.client.ValidatePin(ctx, req.PinCode)
	if err != nil {
		return session.Snapshot{}, err
	}
	if !v.Joinable() {
		return session.Snapshot{}, ErrPinRejected
	}
	sess, err := s.dial(ctx, v.PlayID, req.PinCode, req.PlayerName, req.Owner, session.RolePrimary, req.AutoAnswer)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// BulkJoin validates the PIN once, then dials one bot session per name.
// Individual dial failures are reported per name, not fatal to the batch.
func (s *Service) BulkJoin(ctx context.Context, req BulkJoinRequest) (*BulkJoinResponse, error) {
	if !validPin(req.PinCode) || len(req.BotNames) == 0 {
		return nil, ErrInvalidRequest
	}
	if s.bans != nil && s.bans.IsBanned(req.Owner) {
		return nil, ErrOwnerBanned
	}
	v, err := s.client.ValidatePin(ctx, req.PinCode)
	if err != nil {
		return nil, err
	}
	if !v.Joinable() {
		return nil, ErrPinRejected
	}

	resp := &BulkJoinResponse{GameID: v.PlayID, Items: make([]BulkJoinItem, 0, len(req.BotNames))}
	for _, name := range req.BotNames {
		if name == "" {
			resp.Items = append(resp.Items, BulkJoinItem{Name: name, Error: ErrInvalidRequest.Error()})
			resp.Failed++
			continue
		}
		sess, err := s.dial(ctx, v.PlayID, req.PinCode, name, req.Owner, session.RoleBot, req.AutoAnswer)
		if err != nil {
			log.Warn().Err(err).Str("name", name).Msg("bot join failed")
			resp.Items = append(resp.Items, BulkJoinItem{Name: name, Error: err.Error()})
			resp.Failed++
			continue
		}
		resp.Items = append(resp.Items, BulkJoinItem{Name: name, SessionID: sess.ID()})
		resp.Joined++
	}
	return resp, nil
}

func (s *Service) dial(ctx context.Context, gameID, pin, name, owner string, role session.Role, autoAnswer bool) (*session.Session, error) {
	opts := session.Options{
		DisplayName:     name,
		Role:            role,
		Owner:           owner,
		GamePin:         pin,
		AutoAnswer:      autoAnswer,
		AnswerLatencyMS: s.defaults.AnswerLatencyMS,
		DisconnectGrace: s.defaults.DisconnectGrace,
	}
	if role == session.RolePrimary && s.recon != nil {
		opts.OnRestart = s.recon.OnRestart
	}
	sess, err := session.Dial(ctx, s.client, ulid.Make().String(), gameID, opts)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Put(sess); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(id string) (session.Snapshot, error) {
	sess, ok := s.registry.Get(id)
	if !ok {
		return session.Snapshot{}, ErrSessionNotFound
	}
	return sess.Snapshot(), nil
}

func (s *Service) List(gameID, owner string) *SessionsResponse {
	var sessions []*session.Session
	switch {
	case gameID != "":
		sessions = s.registry.ListByGame(gameID)
	case owner != "":
		sessions = s.registry.ListByOwner(owner)
	default:
		sessions = s.registry.List()
	}
	items := make([]session.Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		items = append(items, sess.Snapshot())
	}
	return &SessionsResponse{Items: items}
}

func (s *Service) SetAutoAnswer(id string, enabled bool) (session.Snapshot, error) {
	sess, ok := s.registry.Get(id)
	if !ok {
		return session.Snapshot{}, ErrSessionNotFound
	}
	sess.SetAutoAnswer(enabled)
	return sess.Snapshot(), nil
}

func (s *Service) SubmitAnswer(id string, answerIndex int) (*AnswerResult, error) {
	if answerIndex < 0 {
		return nil, ErrInvalidRequest
	}
	sess, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	wasCorrect, err := sess.SubmitAnswer(answerIndex)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Sent: true, WasCorrect: wasCorrect}, nil
}

// Disconnect closes the socket. The session stays visible in the registry
// until the sweeper evicts it, so status queries still resolve.
func (s *Service) Disconnect(id string) error {
	sess, ok := s.registry.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	sess.Close()
	return nil
}

func (s *Service) BulkDisconnect(ids []string) *BulkDisconnectResponse {
	resp := &BulkDisconnectResponse{Disconnected: []string{}, Missing: []string{}}
	for _, id := range ids {
		if err := s.Disconnect(id); err != nil {
			resp.Missing = append(resp.Missing, id)
			continue
		}
		resp.Disconnected = append(resp.Disconnected, id)
	}
	return resp
}

func (s *Service) recordOutcome(snap session.Snapshot) {
	outcome := "closed"
	switch {
	case snap.Rejected:
		outcome = "rejected"
	case snap.GameComplete:
		outcome = "completed"
	case snap.State == session.StateFailed:
		outcome = "failed"
	}
	medal := ""
	if snap.Medal != nil {
		medal = snap.Medal.Place
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.led.Record(ctx, store.GameOutcome{
		SessionID:   snap.ID,
		Owner:       snap.Owner,
		GamePin:     snap.GamePin,
		GameID:      snap.GameID,
		DisplayName: snap.DisplayName,
		Role:        string(snap.Role),
		Medal:       medal,
		Answered:    snap.QuestionsAnswered,
		Outcome:     outcome,
	})
}

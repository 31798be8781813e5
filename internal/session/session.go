// Package session owns the per-connection state machine for a headless
// Panquiz player, the registry of live sessions, and the restart reconnector.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/hub"
	"panquiz-swarm/internal/panquiz"
)

type Role string

const (
	RolePrimary Role = "primary"
	RoleBot     Role = "bot"
)

type State string

const (
	StateConnecting    State = "connecting"
	StateHandshakeSent State = "handshake_sent"
	StateJoined        State = "joined"
	StateActive        State = "active"
	StateRestarting    State = "restarting"
	StateClosed        State = "closed"
	StateFailed        State = "failed"
)

// connected reports whether st still has a live socket.
func connected(st State) bool {
	switch st {
	case StateConnecting, StateHandshakeSent, StateJoined, StateActive:
		return true
	}
	return false
}

// Question is the currently pending question, kept until answered or
// superseded.
type Question struct {
	Number       int       `json:"question_number"`
	Text         string    `json:"question"`
	Answers      []string  `json:"answers"`
	RightAnswer  string    `json:"right_answer"`
	MaxAnswers   int       `json:"max_answers"`
	CorrectIndex int       `json:"correct_index"`
	ReceivedAt   time.Time `json:"received_at"`
}

// Options configures a new session.
type Options struct {
	DisplayName     string
	Role            Role
	Owner           string
	GamePin         string
	AutoAnswer      bool
	AnswerLatencyMS int
	// DisconnectGrace is how long the socket stays open after a
	// PlayerDisconnected(true) so trailing medal frames still arrive.
	DisconnectGrace time.Duration
	// OnRestart is invoked after a PlayAgain closed the socket. Wired only
	// for primary sessions; the reconnector picks up the bots itself.
	OnRestart func(s *Session, restart hub.Restart)
}

const (
	defaultAnswerLatencyMS = 500
	defaultDisconnectGrace = 10 * time.Second
)

// Session is one headless player on one persistent hub socket. All mutation
// happens under mu, driven by the socket's read loop and by caller commands.
type Session struct {
	id     string
	name   string
	role   Role
	owner  string
	pin    string
	client *panquiz.Client

	latencyMS       int
	disconnectGrace time.Duration
	onRestart       func(*Session, hub.Restart)

	mu             sync.Mutex
	gameID         string
	state          State
	autoAnswer     bool
	answered       int
	lastActivity   time.Time
	closedAt       time.Time
	question       *Question
	medal          *Medal
	rejected       bool
	gameComplete   bool
	pendingRestart *hub.Restart
	conn           *websocket.Conn
	closing        bool
	closeTimer     *time.Timer
	started        chan struct{} // closed on QuizAlreadyStarted
	done           chan struct{} // closed when the read loop exits

	writeMu sync.Mutex
}

// Snapshot is a copy of the session state safe to hand to callers.
type Snapshot struct {
	ID                string       `json:"id"`
	GameID            string       `json:"game_id"`
	GamePin           string       `json:"game_pin,omitempty"`
	DisplayName       string       `json:"display_name"`
	Role              Role         `json:"role"`
	Owner             string       `json:"owner"`
	State             State        `json:"state"`
	Connected         bool         `json:"connected"`
	AutoAnswer        bool         `json:"auto_answer"`
	QuestionsAnswered int          `json:"questions_answered"`
	LastActivity      time.Time    `json:"last_activity"`
	Rejected          bool         `json:"rejected"`
	GameComplete      bool         `json:"game_complete"`
	Question          *Question    `json:"question,omitempty"`
	Medal             *Medal       `json:"medal,omitempty"`
	PendingRestart    *hub.Restart `json:"pending_restart,omitempty"`
}

// Dial negotiates, opens the socket, sends the protocol handshake, and starts
// the read loop.
func Dial(ctx context.Context, client *panquiz.Client, id, gameID string, opts Options) (*Session, error) {
	s := &Session{
		id:              id,
		name:            opts.DisplayName,
		role:            opts.Role,
		owner:           opts.Owner,
		pin:             opts.GamePin,
		client:          client,
		latencyMS:       opts.AnswerLatencyMS,
		disconnectGrace: opts.DisconnectGrace,
		onRestart:       opts.OnRestart,
		gameID:          gameID,
		state:           StateConnecting,
		autoAnswer:      opts.AutoAnswer,
		lastActivity:    time.Now(),
	}
	if s.role == "" {
		s.role = RolePrimary
	}
	if s.latencyMS <= 0 {
		s.latencyMS = defaultAnswerLatencyMS
	}
	if s.disconnectGrace <= 0 {
		s.disconnectGrace = defaultDisconnectGrace
	}
	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// connect performs one negotiate+dial+handshake cycle and starts a read loop.
// Caller must ensure no previous socket is live.
func (s *Session) connect(ctx context.Context) error {
	desc, err := s.client.Negotiate(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, toWebsocketURL(desc.SocketURL), nil)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		return err
	}

	frame, err := hub.Encode(hub.Handshake{Protocol: "json", Version: 1})
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		_ = conn.Close()
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateHandshakeSent
	s.closing = false
	s.lastActivity = time.Now()
	s.started = make(chan struct{})
	s.done = make(chan struct{})
	done, started := s.done, s.started
	s.mu.Unlock()

	go s.readLoop(conn, done, started)
	return nil
}

func toWebsocketURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

func (s *Session) readLoop(conn *websocket.Conn, done, started chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.socketClosed(conn)
			return
		}
		records, errs := hub.Decode(data)
		for _, derr := range errs {
			log.Warn().Err(derr).Str("session_id", s.id).Msg("frame decode failed")
		}
		for _, rec := range records {
			s.handleRecord(conn, rec, started)
		}
	}
}

func (s *Session) handleRecord(conn *websocket.Conn, rec hub.Record, started chan struct{}) {
	s.mu.Lock()
	if s.conn != conn {
		// stale loop of a replaced socket
		s.mu.Unlock()
		return
	}
	s.lastActivity = time.Now()

	if rec.Ack {
		if s.state == StateHandshakeSent {
			s.state = StateJoined
			gameID := s.gameID
			s.mu.Unlock()
			if err := s.send(hub.TargetPlayerJoined, gameID, s.name); err != nil {
				log.Error().Err(err).Str("session_id", s.id).Msg("player joined send failed")
			}
			return
		}
		s.mu.Unlock()
		return
	}

	msg := rec.Message
	switch msg.Target {
	case hub.TargetShowQuestion:
		s.handleQuestionLocked(msg)
	case hub.TargetShowMedal:
		s.handleMedalLocked(msg)
	case hub.TargetQuizAlreadyStarted:
		s.rejected = true
		s.closing = true
		select {
		case <-started:
		default:
			close(started)
		}
		s.mu.Unlock()
		log.Info().Str("session_id", s.id).Msg("quiz already started")
		_ = conn.Close()
	case hub.TargetPlayerDisconnected:
		s.handleDisconnectedLocked(msg, conn)
	case hub.TargetPlayAgain:
		s.handleRestartLocked(msg, conn)
	default:
		s.mu.Unlock()
	}
}

// handleQuestionLocked is entered with mu held and releases it.
func (s *Session) handleQuestionLocked(msg *hub.Message) {
	q, err := hub.ParseQuestion(msg)
	if err != nil {
		s.mu.Unlock()
		log.Warn().Err(err).Str("session_id", s.id).Msg("bad question payload")
		return
	}
	if s.state == StateJoined {
		s.state = StateActive
	}
	idx := ResolveAnswer(q.RightAnswer, q.MaxAnswers)
	pending := &Question{
		Number:       q.QuestionNumber,
		Text:         q.Text,
		Answers:      q.Answers,
		RightAnswer:  q.RightAnswer,
		MaxAnswers:   q.MaxAnswers,
		CorrectIndex: idx,
		ReceivedAt:   time.Now(),
	}
	s.question = pending
	auto := s.autoAnswer
	gameID := s.gameID
	if auto && idx >= 0 {
		s.question = nil
		s.answered++
	}
	s.mu.Unlock()

	if auto && idx >= 0 {
		if err := s.send(hub.TargetAnswerGiven, gameID, strconv.Itoa(idx), s.latencyMS); err != nil {
			s.restorePending(pending)
			log.Error().Err(err).Str("session_id", s.id).Msg("auto answer send failed")
			return
		}
		log.Info().Str("session_id", s.id).Int("answer", idx).Msg("auto answer sent")
	}
	if idx < 0 {
		log.Warn().Str("session_id", s.id).Str("right_answer", q.RightAnswer).Msg("unresolvable answer mask")
	}
}

func (s *Session) handleMedalLocked(msg *hub.Message) {
	code, err := hub.ParseMedalCode(msg)
	if err != nil {
		s.mu.Unlock()
		log.Warn().Err(err).Str("session_id", s.id).Msg("bad medal payload")
		return
	}
	m := DecodeMedal(code)
	s.medal = &m
	s.gameComplete = true
	s.mu.Unlock()
	log.Info().Str("session_id", s.id).Str("place", m.Place).Msg("medal received")
}

func (s *Session) handleDisconnectedLocked(msg *hub.Message, conn *websocket.Conn) {
	gone, err := hub.ParseDisconnected(msg)
	if err != nil || !gone {
		s.mu.Unlock()
		return
	}
	// Close later, not now: medals have been observed to trail the
	// disconnect signal.
	if s.closeTimer == nil {
		s.closing = true
		s.closeTimer = time.AfterFunc(s.disconnectGrace, func() {
			_ = conn.Close()
		})
		log.Info().Str("session_id", s.id).Dur("grace", s.disconnectGrace).Msg("disconnect signaled, closing after grace")
	}
	s.mu.Unlock()
}

func (s *Session) handleRestartLocked(msg *hub.Message, conn *websocket.Conn) {
	restart, err := hub.ParseRestart(msg)
	if err != nil {
		s.mu.Unlock()
		log.Warn().Err(err).Str("session_id", s.id).Msg("bad restart payload")
		return
	}
	s.pendingRestart = restart
	s.state = StateRestarting
	s.closing = true
	onRestart := s.onRestart
	s.mu.Unlock()

	log.Info().
		Str("session_id", s.id).
		Str("old_game_id", restart.OldGameID).
		Str("new_game_id", restart.NewGameID).
		Msg("game restarted")
	_ = conn.Close()
	if onRestart != nil {
		onRestart(s, *restart)
	}
}

func (s *Session) socketClosed(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return
	}
	s.conn = nil
	s.closedAt = time.Now()
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	switch {
	case s.state == StateRestarting:
		// reconnector owns the next transition
	case s.closing || s.rejected:
		s.state = StateClosed
	default:
		s.state = StateFailed
	}
	log.Info().Str("session_id", s.id).Str("state", string(s.state)).Msg("socket closed")
}

// send writes one hub invocation to the current socket.
func (s *Session) send(target string, args ...any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	msg, err := hub.NewInvocation(target, args...)
	if err != nil {
		return err
	}
	frame, err := hub.Encode(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// Reconnect renegotiates and replaces the socket, keeping the session id and
// bookkeeping but joining newGameID. Used by the restart reconnector.
func (s *Session) Reconnect(ctx context.Context, newGameID string) error {
	s.mu.Lock()
	if s.conn != nil {
		old := s.conn
		s.conn = nil
		_ = old.Close()
	}
	s.gameID = newGameID
	s.question = nil
	s.medal = nil
	s.rejected = false
	s.gameComplete = false
	s.pendingRestart = nil
	s.state = StateConnecting
	s.mu.Unlock()
	return s.connect(ctx)
}

// Close tears the socket down deliberately.
func (s *Session) Close() {
	s.mu.Lock()
	s.closing = true
	conn := s.conn
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	if conn == nil && connectedOrRestarting(s.state) {
		s.state = StateClosed
	}
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func connectedOrRestarting(st State) bool {
	return connected(st) || st == StateRestarting
}

// SetAutoAnswer toggles automatic answering for future questions.
func (s *Session) SetAutoAnswer(enabled bool) {
	s.mu.Lock()
	s.autoAnswer = enabled
	s.mu.Unlock()
}

// SubmitAnswer sends the caller-chosen index for the pending question and
// reports whether it matched the resolved correct index.
func (s *Session) SubmitAnswer(answerIndex int) (wasCorrect bool, err error) {
	s.mu.Lock()
	q := s.question
	if q == nil {
		s.mu.Unlock()
		return false, ErrNoQuestion
	}
	gameID := s.gameID
	s.question = nil
	s.answered++
	s.mu.Unlock()

	if err := s.send(hub.TargetAnswerGiven, gameID, strconv.Itoa(answerIndex), s.latencyMS); err != nil {
		s.restorePending(q)
		return false, err
	}
	return q.CorrectIndex >= 0 && answerIndex == q.CorrectIndex, nil
}

// restorePending undoes the answer bookkeeping after a failed send, unless a
// newer question has arrived since.
func (s *Session) restorePending(q *Question) {
	s.mu.Lock()
	if s.question == nil {
		s.question = q
		s.answered--
	}
	s.mu.Unlock()
}

// AlreadyStarted is closed when the hub reports the quiz already running.
func (s *Session) AlreadyStarted() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Done is closed when the current socket's read loop exits.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Role() Role    { return s.role }
func (s *Session) Owner() string { return s.owner }

// Snapshot copies the current state for status queries.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:                s.id,
		GameID:            s.gameID,
		GamePin:           s.pin,
		DisplayName:       s.name,
		Role:              s.role,
		Owner:             s.owner,
		State:             s.state,
		Connected:         connected(s.state),
		AutoAnswer:        s.autoAnswer,
		QuestionsAnswered: s.answered,
		LastActivity:      s.lastActivity,
		Rejected:          s.rejected,
		GameComplete:      s.gameComplete,
	}
	if s.question != nil {
		q := *s.question
		snap.Question = &q
	}
	if s.medal != nil {
		m := *s.medal
		snap.Medal = &m
	}
	if s.pendingRestart != nil {
		r := *s.pendingRestart
		snap.PendingRestart = &r
	}
	return snap
}

// closedSince reports when the socket closed, for sweep decisions.
func (s *Session) closedSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if connected(s.state) || s.state == StateRestarting {
		return time.Time{}, false
	}
	if s.closedAt.IsZero() {
		return s.lastActivity, true
	}
	return s.closedAt, true
}

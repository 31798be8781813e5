package session

import "errors"

var (
	ErrNotConnected = errors.New("session_not_connected")
	ErrNoQuestion   = errors.New("no_pending_question")
	ErrDuplicateID  = errors.New("duplicate_session_id")
)

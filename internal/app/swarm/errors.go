package swarm

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrSessionNotFound = errors.New("session_not_found")
	ErrPinRejected     = errors.New("pin_rejected")
	ErrOwnerBanned     = errors.New("owner_banned")
)

package panquiz

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccessToken means the first negotiate response lacked the bearer
	// token or the socket URL.
	ErrNoAccessToken = errors.New("negotiate: missing access token or socket url")
	// ErrNoConnectionToken means the second negotiate response lacked the
	// connection token or connection id.
	ErrNoConnectionToken = errors.New("negotiate: missing connection token")
)

// TransportError wraps a transport-level failure at one negotiation or
// validation step. The attempt is terminal; callers retry by calling again.
type TransportError struct {
	Step string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("panquiz %s: %v", e.Step, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

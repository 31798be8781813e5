package prober

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/session"
)

const DefaultLivenessTimeout = time.Second

// NewLivenessProbe builds the session-based sub-probe: it joins the candidate
// game with a throwaway session under a decoy name and races timeout against
// a QuizAlreadyStarted signal. Silence until the timeout means joinable. The
// ephemeral socket is always closed.
func NewLivenessProbe(client *panquiz.Client, decoyName string, timeout time.Duration) LivenessFunc {
	if decoyName == "" {
		decoyName = "Player"
	}
	if timeout <= 0 {
		timeout = DefaultLivenessTimeout
	}
	return func(ctx context.Context, pin, playID string) (bool, error) {
		s, err := session.Dial(ctx, client, "probe-"+ulid.Make().String(), playID, session.Options{
			DisplayName: decoyName,
			Role:        session.RoleBot,
		})
		if err != nil {
			return false, err
		}
		defer s.Close()

		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-s.AlreadyStarted():
			return false, nil
		case <-s.Done():
			// socket dropped without a verdict; treat as not joinable
			if s.Snapshot().Rejected {
				return false, nil
			}
			log.Warn().Str("pin", pin).Msg("liveness probe socket dropped early")
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return true, nil
		}
	}
}

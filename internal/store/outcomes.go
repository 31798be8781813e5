package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// GameOutcome is one session's terminal result.
type GameOutcome struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Owner       string    `json:"owner"`
	GamePin     string    `json:"game_pin"`
	GameID      string    `json:"game_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Medal       string    `json:"medal,omitempty"`
	Answered    int       `json:"answered"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
}

type OutcomeFilter struct {
	Owner   string
	GamePin string
	From    *time.Time
	To      *time.Time
}

func (s *Store) RecordOutcome(ctx context.Context, o GameOutcome) (string, error) {
	if o.ID == "" {
		o.ID = NewID()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO game_outcomes
			(id, session_id, owner_id, game_pin, game_id, display_name, role, medal, answered, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.SessionID, o.Owner, o.GamePin, o.GameID, o.DisplayName, o.Role, o.Medal, o.Answered, o.Outcome)
	if err != nil {
		return "", err
	}
	return o.ID, nil
}

func (s *Store) ListOutcomes(ctx context.Context, f OutcomeFilter, limit, offset int) ([]GameOutcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, session_id, owner_id, game_pin, game_id, display_name, role, medal, answered, outcome, created_at
		FROM game_outcomes
		WHERE ($1 = '' OR owner_id = $1)
		  AND ($2 = '' OR game_pin = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`,
		f.Owner, f.GamePin, f.From, f.To, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameOutcome, 0, limit)
	for rows.Next() {
		var o GameOutcome
		if err := rows.Scan(&o.ID, &o.SessionID, &o.Owner, &o.GamePin, &o.GameID,
			&o.DisplayName, &o.Role, &o.Medal, &o.Answered, &o.Outcome, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) GetOutcome(ctx context.Context, id string) (*GameOutcome, error) {
	var o GameOutcome
	err := s.Pool.QueryRow(ctx, `
		SELECT id, session_id, owner_id, game_pin, game_id, display_name, role, medal, answered, outcome, created_at
		FROM game_outcomes WHERE id = $1`, id).
		Scan(&o.ID, &o.SessionID, &o.Owner, &o.GamePin, &o.GameID,
			&o.DisplayName, &o.Role, &o.Medal, &o.Answered, &o.Outcome, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

package onboarding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-fitness-coach/internal/profile"
)

// Store persists quiz progress per user.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the saved state of a user, or a fresh state when none exists.
func (s *Store) Load(ctx context.Context, userID string) (State, error) {
	var (
		step    int
		answers string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT step, answers FROM onboarding_progress WHERE user_id = ?`, userID,
	).Scan(&step, &answers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{Answers: profile.Answers{}}, nil
		}
		return State{}, fmt.Errorf("failed to load quiz progress for user %s: %w", userID, err)
	}

	state := State{Step: step}
	if err := json.Unmarshal([]byte(answers), &state.Answers); err != nil {
		return State{}, fmt.Errorf("failed to unmarshal quiz answers: %w", err)
	}
	if state.Answers == nil {
		state.Answers = profile.Answers{}
	}
	return state, nil
}

// Save upserts the state of a user.
func (s *Store) Save(ctx context.Context, userID string, state State) error {
	answers, err := json.Marshal(state.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO onboarding_progress (user_id, step, answers, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			step = excluded.step,
			answers = excluded.answers,
			updated_at = excluded.updated_at`,
		userID, state.Step, string(answers), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz progress for user %s: %w", userID, err)
	}
	return nil
}

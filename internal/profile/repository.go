package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository is a database-backed repository for profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the profile of a user, or nil when none exists.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	var (
		data               string
		createdAt, updated time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM profiles WHERE user_id = ?`, userID,
	).Scan(&data, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	p.ID = userID
	p.CreatedAt = createdAt
	p.UpdatedAt = updated
	return &p, nil
}

// Save inserts or replaces the profile document of p.ID.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		p.ID, string(data), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", p.ID, err)
	}
	return nil
}

// SaveAnswers merges quiz answers into the user's profile, creating the
// profile when the user has none yet.
func (r *Repository) SaveAnswers(ctx context.Context, userID string, answers Answers) (*Profile, error) {
	p, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &Profile{ID: userID}
	}
	if err := ApplyAnswers(p, answers); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Package nutrition stores the weekly nutrition plan of each user as an
// opaque JSON document. A user has at most one plan; saving replaces it.
package nutrition

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-fitness-coach/internal/fitness"
)

// Repository is a database-backed repository for nutrition plans.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores plan as the user's current plan. Concurrent writers are not
// coordinated: the last write wins.
func (r *Repository) Upsert(ctx context.Context, userID string, plan *fitness.NutritionPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal nutrition plan to JSON: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO nutrition_plans (user_id, plan, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET plan = excluded.plan, updated_at = excluded.updated_at`,
		userID, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save nutrition plan for user %s: %w", userID, err)
	}
	return nil
}

// Get returns the user's plan, or nil when none has been generated.
func (r *Repository) Get(ctx context.Context, userID string) (*fitness.NutritionPlan, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT plan FROM nutrition_plans WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get nutrition plan for user %s: %w", userID, err)
	}

	var plan fitness.NutritionPlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nutrition plan JSON: %w", err)
	}
	return &plan, nil
}

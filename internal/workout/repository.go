// Package workout stores workouts, their exercises and completion logs.
package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ai-fitness-coach/internal/fitness"
)

// Workout is a saved workout. Exercises keep the order they were saved in.
type Workout struct {
	ID              int64                     `json:"id"`
	UserID          string                    `json:"user_id"`
	Name            string                    `json:"name"`
	Description     string                    `json:"description"`
	Difficulty      string                    `json:"difficulty,omitempty"`
	DurationMinutes int                       `json:"duration_minutes,omitempty"`
	AIGenerated     bool                      `json:"ai_generated"`
	CreatedAt       time.Time                 `json:"created_at"`
	Exercises       []fitness.WorkoutExercise `json:"exercises,omitempty"`
}

// Log records one completed session of a workout.
type Log struct {
	ID              int64     `json:"id"`
	WorkoutID       int64     `json:"workout_id"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Repository is a database-backed repository for workouts.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a workout and its exercises in one transaction. The plan's
// exercise order becomes each exercise's order_index.
func (r *Repository) Create(ctx context.Context, userID string, plan fitness.WorkoutPlan, difficulty string, durationMinutes int, aiGenerated bool) (*Workout, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	w := &Workout{
		UserID:          userID,
		Name:            plan.Name,
		Description:     plan.Description,
		Difficulty:      difficulty,
		DurationMinutes: durationMinutes,
		AIGenerated:     aiGenerated,
		CreatedAt:       time.Now().UTC(),
		Exercises:       plan.Exercises,
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO workouts (user_id, name, description, difficulty, duration_minutes, ai_generated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.UserID, w.Name, w.Description, w.Difficulty, w.DurationMinutes, w.AIGenerated, w.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert workout: %w", err)
	}
	if w.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read workout id: %w", err)
	}

	for i, ex := range plan.Exercises {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exercises (workout_id, name, sets, reps, weight_kg, rest_seconds, notes, order_index)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, ex.Name, ex.Sets, ex.Reps, ex.WeightKg, ex.RestSeconds, ex.Notes, i,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert exercise %q: %w", ex.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit workout: %w", err)
	}
	return w, nil
}

// List returns the workouts of a user, newest first, without exercises.
func (r *Repository) List(ctx context.Context, userID string) ([]Workout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, difficulty, duration_minutes, ai_generated, created_at
		FROM workouts
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts for user %s: %w", userID, err)
	}
	defer rows.Close()

	workouts := []Workout{}
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Difficulty,
			&w.DurationMinutes, &w.AIGenerated, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// Get returns a workout with its exercises, or nil when the user owns no
// workout with that id.
func (r *Repository) Get(ctx context.Context, userID string, id int64) (*Workout, error) {
	var w Workout
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, difficulty, duration_minutes, ai_generated, created_at
		FROM workouts
		WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Difficulty,
		&w.DurationMinutes, &w.AIGenerated, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workout %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, sets, reps, weight_kg, rest_seconds, notes
		FROM exercises
		WHERE workout_id = ?
		ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises of workout %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ex     fitness.WorkoutExercise
			weight sql.NullFloat64
		)
		if err := rows.Scan(&ex.Name, &ex.Sets, &ex.Reps, &weight, &ex.RestSeconds, &ex.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		if weight.Valid {
			ex.WeightKg = &weight.Float64
		}
		w.Exercises = append(w.Exercises, ex)
	}
	return &w, rows.Err()
}

// Delete removes a workout owned by the user. It reports whether a workout
// was deleted.
func (r *Repository) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete workout %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// LogCompletion records a completed session. It returns nil when the user
// owns no workout with that id.
func (r *Repository) LogCompletion(ctx context.Context, userID string, workoutID int64, durationMinutes int, notes string) (*Log, error) {
	l := &Log{
		WorkoutID:       workoutID,
		DurationMinutes: durationMinutes,
		Notes:           notes,
		CompletedAt:     time.Now().UTC(),
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO workout_logs (user_id, workout_id, duration_minutes, notes, completed_at)
		SELECT ?, id, ?, ?, ? FROM workouts WHERE id = ? AND user_id = ?`,
		userID, durationMinutes, notes, l.CompletedAt, workoutID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to log workout %d: %w", workoutID, err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}
	if l.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read log id: %w", err)
	}
	return l, nil
}

// Logs returns the completion logs of a user, newest first.
func (r *Repository) Logs(ctx context.Context, userID string, limit int) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workout_id, duration_minutes, notes, completed_at
		FROM workout_logs
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout logs for user %s: %w", userID, err)
	}
	defer rows.Close()

	logs := []Log{}
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.WorkoutID, &l.DurationMinutes, &l.Notes, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workout log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Package progress tracks body measurements and the dashboard summary.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Measurement is one body measurement entry. Every metric is optional.
type Measurement struct {
	ID           int64     `json:"id"`
	WeightKg     *float64  `json:"weight_kg,omitempty"`
	BodyFatPct   *float64  `json:"body_fat_pct,omitempty"`
	MuscleMassKg *float64  `json:"muscle_mass_kg,omitempty"`
	ChestCm      *float64  `json:"chest_cm,omitempty"`
	WaistCm      *float64  `json:"waist_cm,omitempty"`
	HipsCm       *float64  `json:"hips_cm,omitempty"`
	BicepsCm     *float64  `json:"biceps_cm,omitempty"`
	ThighsCm     *float64  `json:"thighs_cm,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	MeasuredAt   time.Time `json:"measured_at"`
}

// Dashboard summarises a user's activity.
type Dashboard struct {
	CompletedWorkouts int          `json:"completed_workouts"`
	Workouts          int          `json:"workouts"`
	MealPlans         int          `json:"meal_plans"`
	HasNutritionPlan  bool         `json:"has_nutrition_plan"`
	LatestMeasurement *Measurement `json:"latest_measurement,omitempty"`
}

// Repository is a database-backed repository for progress data.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const measurementColumns = `id, weight_kg, body_fat_pct, muscle_mass_kg, chest_cm, waist_cm, hips_cm, biceps_cm, thighs_cm, notes, measured_at`

// Add stores a measurement. A zero MeasuredAt means now.
func (r *Repository) Add(ctx context.Context, userID string, m Measurement) (*Measurement, error) {
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = time.Now()
	}
	m.MeasuredAt = m.MeasuredAt.UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO body_measurements
		(user_id, weight_kg, body_fat_pct, muscle_mass_kg, chest_cm, waist_cm, hips_cm, biceps_cm, thighs_cm, notes, measured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, m.WeightKg, m.BodyFatPct, m.MuscleMassKg, m.ChestCm, m.WaistCm,
		m.HipsCm, m.BicepsCm, m.ThighsCm, m.Notes, m.MeasuredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert measurement: %w", err)
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read measurement id: %w", err)
	}
	return &m, nil
}

// List returns the measurements of a user, newest first.
func (r *Repository) List(ctx context.Context, userID string, limit int) ([]Measurement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+measurementColumns+`
		FROM body_measurements
		WHERE user_id = ?
		ORDER BY measured_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements for user %s: %w", userID, err)
	}
	defer rows.Close()

	list := []Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// Dashboard collects the counts shown on the user's dashboard.
func (r *Repository) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	var (
		d         Dashboard
		nutrition int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM workout_logs WHERE user_id = ?),
			(SELECT COUNT(*) FROM workouts WHERE user_id = ?),
			(SELECT COUNT(*) FROM meal_plans WHERE user_id = ?),
			(SELECT COUNT(*) FROM nutrition_plans WHERE user_id = ?)`,
		userID, userID, userID, userID,
	).Scan(&d.CompletedWorkouts, &d.Workouts, &d.MealPlans, &nutrition)
	if err != nil {
		return nil, fmt.Errorf("failed to count dashboard stats for user %s: %w", userID, err)
	}
	d.HasNutritionPlan = nutrition > 0

	row := r.db.QueryRowContext(ctx, `
		SELECT `+measurementColumns+`
		FROM body_measurements
		WHERE user_id = ?
		ORDER BY measured_at DESC, id DESC
		LIMIT 1`, userID)
	latest, err := scanMeasurement(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	d.LatestMeasurement = latest
	return &d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(s scanner) (*Measurement, error) {
	var m Measurement
	var weight, fat, muscle, chest, waist, hips, biceps, thighs sql.NullFloat64
	err := s.Scan(&m.ID, &weight, &fat, &muscle, &chest, &waist, &hips, &biceps, &thighs, &m.Notes, &m.MeasuredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan measurement: %w", err)
	}
	m.WeightKg = nullable(weight)
	m.BodyFatPct = nullable(fat)
	m.MuscleMassKg = nullable(muscle)
	m.ChestCm = nullable(chest)
	m.WaistCm = nullable(waist)
	m.HipsCm = nullable(hips)
	m.BicepsCm = nullable(biceps)
	m.ThighsCm = nullable(thighs)
	return &m, nil
}

func nullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

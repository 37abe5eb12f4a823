// Package meals stores daily meal plans and their meals.
package meals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-fitness-coach/internal/fitness"
)

// Plan is a saved meal plan. Targets are the sums over its meals.
type Plan struct {
	ID             int64                   `json:"id"`
	UserID         string                  `json:"user_id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	TargetCalories float64                 `json:"target_calories"`
	TargetProtein  float64                 `json:"target_protein"`
	TargetCarbs    float64                 `json:"target_carbs"`
	TargetFat      float64                 `json:"target_fat"`
	CreatedAt      time.Time               `json:"created_at"`
	Meals          []fitness.GeneratedMeal `json:"meals,omitempty"`
}

// Totals sums calories and macros over meals. Missing macros count as zero.
func Totals(meals []fitness.GeneratedMeal) (calories, protein, carbs, fat float64) {
	for _, m := range meals {
		calories += m.Calories
		protein += value(m.ProteinG)
		carbs += value(m.CarbsG)
		fat += value(m.FatG)
	}
	return calories, protein, carbs, fat
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Repository is a database-backed repository for meal plans.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a meal plan and its meals in one transaction.
func (r *Repository) Create(ctx context.Context, userID string, mp fitness.MealPlan) (*Plan, error) {
	p := &Plan{
		UserID:      userID,
		Name:        mp.Name,
		Description: mp.Description,
		CreatedAt:   time.Now().UTC(),
		Meals:       mp.Meals,
	}
	p.TargetCalories, p.TargetProtein, p.TargetCarbs, p.TargetFat = Totals(mp.Meals)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO meal_plans (user_id, name, description, target_calories, target_protein, target_carbs, target_fat, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.Description, p.TargetCalories, p.TargetProtein, p.TargetCarbs, p.TargetFat, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meal plan: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read meal plan id: %w", err)
	}

	for i, m := range mp.Meals {
		ingredients, err := json.Marshal(m.Ingredients)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		instructions, err := json.Marshal(nonNil(m.Instructions))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal instructions: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO meals (meal_plan_id, name, meal_type, calories, protein_g, carbs_g, fat_g, ingredients, instructions, order_index)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, m.Name, m.MealType, m.Calories, m.ProteinG, m.CarbsG, m.FatG, string(ingredients), string(instructions), i,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert meal %q: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit meal plan: %w", err)
	}
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// List returns the meal plans of a user, newest first, without meals.
func (r *Repository) List(ctx context.Context, userID string) ([]Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, target_calories, target_protein, target_carbs, target_fat, created_at
		FROM meal_plans
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	plans := []Plan{}
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description,
			&p.TargetCalories, &p.TargetProtein, &p.TargetCarbs, &p.TargetFat, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Get returns a meal plan with its meals, or nil when the user owns no plan
// with that id.
func (r *Repository) Get(ctx context.Context, userID string, id int64) (*Plan, error) {
	var p Plan
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, target_calories, target_protein, target_carbs, target_fat, created_at
		FROM meal_plans
		WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Description,
		&p.TargetCalories, &p.TargetProtein, &p.TargetCarbs, &p.TargetFat, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, meal_type, calories, protein_g, carbs_g, fat_g, ingredients, instructions
		FROM meals
		WHERE meal_plan_id = ?
		ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals of plan %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m                         fitness.GeneratedMeal
			protein, carbs, fat       sql.NullFloat64
			ingredients, instructions string
		)
		if err := rows.Scan(&m.Name, &m.MealType, &m.Calories, &protein, &carbs, &fat, &ingredients, &instructions); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		m.ProteinG = nullable(protein)
		m.CarbsG = nullable(carbs)
		m.FatG = nullable(fat)
		if err := json.Unmarshal([]byte(ingredients), &m.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients of %q: %w", m.Name, err)
		}
		if err := json.Unmarshal([]byte(instructions), &m.Instructions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instructions of %q: %w", m.Name, err)
		}
		if len(m.Instructions) == 0 {
			m.Instructions = nil
		}
		p.Meals = append(p.Meals, m)
	}
	return &p, rows.Err()
}

func nullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

// Delete removes a meal plan owned by the user. It reports whether a plan
// was deleted.
func (r *Repository) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete meal plan %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

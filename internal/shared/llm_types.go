package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a single AI call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one generation (workout, meal
// plan, nutrition plan, coach reply, recipe clip).
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// Agent names recorded in the metrics store.
const (
	AgentWorkout   = "WorkoutGenerator"
	AgentMealPlan  = "MealPlanGenerator"
	AgentNutrition = "NutritionPlanner"
	AgentCoach     = "FitnessCoach"
	AgentClipper   = "RecipeClipper"
)

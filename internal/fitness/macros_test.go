package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMacros(t *testing.T) {
	tests := []struct {
		name     string
		calories float64
		goal     string
		want     MacroTargets
	}{
		{"WeightLoss", 2000, "Weight Loss", MacroTargets{Protein: 175, Carbs: 150, Fat: 78}},
		{"MuscleGain", 2000, "Muscle Gain", MacroTargets{Protein: 150, Carbs: 225, Fat: 56}},
		{"Default", 2000, "General Fitness", MacroTargets{Protein: 150, Carbs: 200, Fat: 67}},
		{"UnknownGoalUsesDefault", 2500, "be strong", MacroTargets{Protein: 188, Carbs: 250, Fat: 83}},
		{"QuizAlias", 2000, "Lose Weight", MacroTargets{Protein: 175, Carbs: 150, Fat: 78}},
		{"ZeroCalories", 0, "Weight Loss", MacroTargets{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Macros(tt.calories, tt.goal))
		})
	}
}

package fitness

import "math"

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// MacroTargets are daily gram targets derived from a calorie goal.
type MacroTargets struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

type macroRatio struct {
	protein, carbs, fat float64
}

var (
	defaultRatio = macroRatio{protein: 0.30, carbs: 0.40, fat: 0.30}

	// Keyed by fitness goal. The quiz labels are aliases of the plan labels.
	goalRatios = map[string]macroRatio{
		"Weight Loss": {protein: 0.35, carbs: 0.30, fat: 0.35},
		"Lose Weight": {protein: 0.35, carbs: 0.30, fat: 0.35},
		"Muscle Gain": {protein: 0.30, carbs: 0.45, fat: 0.25},
		"Gain Muscle": {protein: 0.30, carbs: 0.45, fat: 0.25},
	}
)

// Macros splits a calorie target into protein/carb/fat grams for a goal.
// Unknown goals use the general split.
func Macros(calories float64, goal string) MacroTargets {
	ratio, ok := goalRatios[goal]
	if !ok {
		ratio = defaultRatio
	}
	return MacroTargets{
		Protein: grams(calories, ratio.protein, kcalPerGramProtein),
		Carbs:   grams(calories, ratio.carbs, kcalPerGramCarbs),
		Fat:     grams(calories, ratio.fat, kcalPerGramFat),
	}
}

func grams(calories, ratio float64, kcalPerGram float64) int {
	return int(math.Round(calories * ratio / kcalPerGram))
}

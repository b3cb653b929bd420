package nutrition

import "github.com/habitquest/server/model"

const flagBonus = 15

// Score maps a meal quality and checklist flags to a 0-100 score.
// Base by quality plus 15 per flag, capped at 100.
func Score(quality model.MealQuality, vegetables, protein, grains, properPortion bool) int {
	var score int
	switch quality {
	case model.MealExcellent:
		score = 40
	case model.MealGood:
		score = 30
	case model.MealFair:
		score = 20
	case model.MealPoor:
		score = 10
	default:
		score = 0
	}

	for _, flag := range []bool{vegetables, protein, grains, properPortion} {
		if flag {
			score += flagBonus
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// LogScore scores a stored nutrition log entry.
func LogScore(log *model.NutritionLog) int {
	return Score(log.MealQuality, log.IncludedVegetables, log.IncludedProtein,
		log.IncludedGrains, log.ProperPortion)
}

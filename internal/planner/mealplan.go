package planner

import (
	"contextchef/internal/ranker"
	"contextchef/internal/recipe"
	"contextchef/internal/shopping"
)

// MealRef points a meal slot at a recipe with a serving count.
type MealRef struct {
	RecipeID string `json:"recipe_id"`
	Servings int    `json:"servings"`
}

// Day holds the three meal slots of one plan day. A nil slot means no
// suitable recipe was found; partial days are valid.
type Day struct {
	Breakfast *MealRef `json:"breakfast,omitempty"`
	Lunch     *MealRef `json:"lunch,omitempty"`
	Dinner    *MealRef `json:"dinner,omitempty"`
}

// Constraints steer a weekly plan build. Ranking constraints are applied to
// every slot, with slot tags added on top.
type Constraints struct {
	Ranking         ranker.Constraints
	ServingsPerMeal int
}

// Result is a built weekly plan. AvgNutritionPerDay divides by seven
// regardless of how many slots were filled, so an under-filled week reads as
// diluted rather than complete.
type Result struct {
	Days               []Day                `json:"days"`
	TotalCost          float64              `json:"total_cost"`
	AvgNutritionPerDay recipe.NutritionInfo `json:"avg_nutrition_per_day"`
	ShoppingItems      []shopping.ListItem  `json:"shopping_items"`
}

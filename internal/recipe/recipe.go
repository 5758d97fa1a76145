package recipe

import "strings"

// Difficulty levels a recipe can declare.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// NutritionInfo holds macro values. Whether the values are per serving or per
// unit depends on the owning entity; callers must keep that contract when
// aggregating.
type NutritionInfo struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbG    float64 `json:"carb_g"`
	FatG     float64 `json:"fat_g"`
}

// Ingredient is one line of a recipe. Substitutions, when present, is an
// author-curated priority list consulted before the generic substitution
// table.
type Ingredient struct {
	Name          string   `json:"name"`
	Quantity      float64  `json:"quantity"`
	Unit          string   `json:"unit"`
	Optional      bool     `json:"optional,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Substitutions []string `json:"substitutions,omitempty"`
}

// Recipe is a catalog entry. Read-mostly reference data; the planning
// pipeline never mutates it.
type Recipe struct {
	ID                      string        `json:"id"`
	Title                   string        `json:"title"`
	Ingredients             []Ingredient  `json:"ingredients"`
	NutritionPerServing     NutritionInfo `json:"nutrition_per_serving"`
	Servings                int           `json:"servings"`
	Difficulty              string        `json:"difficulty"`
	EstimatedCostPerServing float64       `json:"estimated_cost_per_serving"`
	PopularityScore         float64       `json:"popularity_score"`
	PrepTimeMinutes         int           `json:"prep_time_minutes"`
	CookTimeMinutes         int           `json:"cook_time_minutes"`
	Tags                    []string      `json:"tags"`
	Cuisine                 string        `json:"cuisine,omitempty"`
	Instructions            string        `json:"instructions,omitempty"`
	SourceURL               string        `json:"source_url,omitempty"`
	UpdatedAt               string        `json:"updated_at,omitempty"`
}

// TotalTimeMinutes is prep plus cook time.
func (r Recipe) TotalTimeMinutes() int {
	return r.PrepTimeMinutes + r.CookTimeMinutes
}

// HasTag reports whether the recipe carries the given tag, case-insensitively.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

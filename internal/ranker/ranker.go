package ranker

import (
	"fmt"
	"sort"
	"strings"

	"contextchef/internal/pantry"
	"contextchef/internal/recipe"
	"contextchef/internal/taxonomy"
)

// Constraints narrow the catalog before scoring. MaxPricePerServing is a hard
// ceiling; RequiredTags must all be present on a recipe for it to survive.
type Constraints struct {
	MaxPricePerServing float64
	RequiredTags       []string
	ExcludeIngredients []string
	DietaryProfile     taxonomy.Profile
}

// Candidate is a catalog recipe with its scores for one ranking request.
type Candidate struct {
	recipe.Recipe
	PantryFit      pantry.FitScore
	RelevanceScore float64
	FinalScore     float64
}

// Rank filters the catalog by hard constraints, scores the survivors, and
// returns at most the top 10 by final score. The sort is stable so equal
// scores keep catalog order.
func Rank(constraints Constraints, catalog []recipe.Recipe, snapshot []pantry.Item, prices map[string]float64, allergens []string) []Candidate {
	var candidates []Candidate
	for _, rec := range catalog {
		if !passesFilters(constraints, rec) {
			continue
		}

		fit := pantry.ScoreFit(rec.Ingredients, snapshot, prices, allergens, constraints.DietaryProfile)
		relevance := relevanceScore(rec, constraints, fit)

		candidates = append(candidates, Candidate{
			Recipe:         rec,
			PantryFit:      fit,
			RelevanceScore: relevance,
			FinalScore:     float64(fit.TotalScore)*0.6 + relevance*0.4,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	if len(candidates) > 10 {
		candidates = candidates[:10]
	}
	return candidates
}

func passesFilters(constraints Constraints, rec recipe.Recipe) bool {
	if rec.EstimatedCostPerServing > constraints.MaxPricePerServing {
		return false
	}

	if !suitableForDiet(rec, constraints.DietaryProfile) {
		return false
	}

	for _, ing := range rec.Ingredients {
		name := strings.ToLower(ing.Name)
		for _, excluded := range constraints.ExcludeIngredients {
			if excluded != "" && strings.Contains(name, strings.ToLower(excluded)) {
				return false
			}
		}
	}

	for _, tag := range constraints.RequiredTags {
		if !rec.HasTag(tag) {
			return false
		}
	}
	return true
}

// suitableForDiet applies the keyword exclusion lists; keto is the one
// profile gated on nutrition instead of ingredient names.
func suitableForDiet(rec recipe.Recipe, profile taxonomy.Profile) bool {
	if profile == taxonomy.Keto {
		return rec.NutritionPerServing.CarbG < 10
	}
	for _, ing := range rec.Ingredients {
		if taxonomy.RecipeIngredientUnsuitable(profile, ing.Name) {
			return false
		}
	}
	return true
}

func relevanceScore(rec recipe.Recipe, constraints Constraints, fit pantry.FitScore) float64 {
	score := 50.0

	score += minFloat(rec.PopularityScore*10, 20)

	if constraints.MaxPricePerServing > 0 {
		priceRatio := rec.EstimatedCostPerServing / constraints.MaxPricePerServing
		score += (1 - priceRatio) * 20
	}

	switch rec.Difficulty {
	case recipe.DifficultyEasy:
		score += 10
	case recipe.DifficultyHard:
		score -= 10
	}

	totalTime := rec.TotalTimeMinutes()
	switch {
	case totalTime <= 30:
		score += 15
	case totalTime <= 45:
		score += 10
	case totalTime > 90:
		score -= 10
	}

	if rec.NutritionPerServing.ProteinG >= 20 {
		score += 5
	}
	if rec.NutritionPerServing.Kcal >= 300 && rec.NutritionPerServing.Kcal <= 600 {
		score += 5
	}

	missing := len(fit.MissingItems)
	if missing <= 2 {
		score += 10
	} else if missing <= 4 {
		score += 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Explain renders a short human-readable rationale for a ranked candidate.
func Explain(c Candidate) string {
	var reasons []string

	if c.PantryFit.PercentSatisfied >= 80 {
		reasons = append(reasons, fmt.Sprintf("You have %d%% of ingredients", c.PantryFit.PercentSatisfied))
	} else if c.PantryFit.PercentSatisfied >= 50 {
		reasons = append(reasons, fmt.Sprintf("You have most ingredients (%d%%)", c.PantryFit.PercentSatisfied))
	}

	if len(c.PantryFit.MissingItems) > 0 {
		missing := c.PantryFit.MissingItems
		if len(missing) > 3 {
			missing = missing[:3]
		}
		reasons = append(reasons, "Only need: "+strings.Join(missing, ", "))
	}

	if c.EstimatedCostPerServing <= 3 {
		reasons = append(reasons, "Very budget-friendly")
	}
	if c.TotalTimeMinutes() <= 30 {
		reasons = append(reasons, "Quick to make")
	}
	if c.NutritionPerServing.ProteinG >= 20 {
		reasons = append(reasons, "High protein")
	}

	return strings.Join(reasons, " - ")
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

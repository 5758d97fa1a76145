package ranker

import (
	"strings"
	"testing"

	"contextchef/internal/pantry"
	"contextchef/internal/recipe"
	"contextchef/internal/taxonomy"
)

func makeRecipe(id string, cost float64) recipe.Recipe {
	return recipe.Recipe{
		ID:                      id,
		Title:                   id,
		EstimatedCostPerServing: cost,
		Difficulty:              recipe.DifficultyMedium,
		Servings:                4,
		Ingredients: []recipe.Ingredient{
			{Name: "Rice", Quantity: 1, Unit: "cup"},
		},
		NutritionPerServing: recipe.NutritionInfo{Kcal: 400, ProteinG: 15, CarbG: 50},
		Tags:                []string{"main"},
	}
}

func TestRank(t *testing.T) {
	prices := map[string]float64{"rice": 1.50}

	t.Run("price ceiling is a hard filter", func(t *testing.T) {
		catalog := []recipe.Recipe{
			makeRecipe("cheap", 2.00),
			makeRecipe("pricey", 9.00),
		}
		got := Rank(Constraints{MaxPricePerServing: 5}, catalog, nil, prices, nil)
		for _, c := range got {
			if c.EstimatedCostPerServing > 5 {
				t.Errorf("candidate %s exceeds the price ceiling", c.ID)
			}
		}
		if len(got) != 1 || got[0].ID != "cheap" {
			t.Errorf("got %d candidates, want only the cheap one", len(got))
		}
	})

	t.Run("keto requires low carbs", func(t *testing.T) {
		lowCarb := makeRecipe("low-carb", 3.00)
		lowCarb.NutritionPerServing.CarbG = 5
		highCarb := makeRecipe("high-carb", 3.00)

		got := Rank(Constraints{MaxPricePerServing: 5, DietaryProfile: taxonomy.Keto},
			[]recipe.Recipe{lowCarb, highCarb}, nil, prices, nil)
		if len(got) != 1 || got[0].ID != "low-carb" {
			t.Errorf("got %v candidates, want only low-carb", len(got))
		}
	})

	t.Run("vegan keyword filter drops recipes", func(t *testing.T) {
		meaty := makeRecipe("meaty", 3.00)
		meaty.Ingredients = append(meaty.Ingredients, recipe.Ingredient{Name: "Chicken Thighs", Quantity: 1, Unit: "lb"})

		got := Rank(Constraints{MaxPricePerServing: 5, DietaryProfile: taxonomy.Vegan},
			[]recipe.Recipe{meaty, makeRecipe("plain", 3.00)}, nil, prices, nil)
		if len(got) != 1 || got[0].ID != "plain" {
			t.Errorf("expected only the plain recipe, got %d candidates", len(got))
		}
	})

	t.Run("excluded ingredient substring drops recipes", func(t *testing.T) {
		got := Rank(Constraints{MaxPricePerServing: 5, ExcludeIngredients: []string{"rice"}},
			[]recipe.Recipe{makeRecipe("r1", 3.00)}, nil, prices, nil)
		if len(got) != 0 {
			t.Errorf("expected no candidates, got %d", len(got))
		}
	})

	t.Run("required tags must all be present", func(t *testing.T) {
		tagged := makeRecipe("tagged", 3.00)
		tagged.Tags = []string{"main", "dinner"}

		got := Rank(Constraints{MaxPricePerServing: 5, RequiredTags: []string{"dinner", "main"}},
			[]recipe.Recipe{makeRecipe("untagged", 3.00), tagged}, nil, prices, nil)
		if len(got) != 1 || got[0].ID != "tagged" {
			t.Errorf("expected only the tagged recipe, got %d candidates", len(got))
		}
	})

	t.Run("caps results at ten", func(t *testing.T) {
		var catalog []recipe.Recipe
		for i := 0; i < 15; i++ {
			catalog = append(catalog, makeRecipe(string(rune('a'+i)), 3.00))
		}
		got := Rank(Constraints{MaxPricePerServing: 5}, catalog, nil, prices, nil)
		if len(got) != 10 {
			t.Errorf("got %d candidates, want 10", len(got))
		}
	})

	t.Run("stable ordering on ties", func(t *testing.T) {
		catalog := []recipe.Recipe{makeRecipe("first", 3.00), makeRecipe("second", 3.00)}
		got := Rank(Constraints{MaxPricePerServing: 5}, catalog, nil, prices, nil)
		if len(got) != 2 || got[0].ID != "first" || got[1].ID != "second" {
			t.Errorf("tie should keep catalog order, got %v then %v", got[0].ID, got[1].ID)
		}
	})

	t.Run("pantry coverage outranks relevance alone", func(t *testing.T) {
		covered := makeRecipe("covered", 3.00)
		uncovered := makeRecipe("uncovered", 3.00)
		uncovered.Ingredients = []recipe.Ingredient{{Name: "Saffron", Quantity: 1, Unit: "g"}}

		snapshot := []pantry.Item{{Name: "Rice", Quantity: 5, Unit: "cup"}}
		got := Rank(Constraints{MaxPricePerServing: 5}, []recipe.Recipe{uncovered, covered}, snapshot, prices, nil)
		if len(got) != 2 || got[0].ID != "covered" {
			t.Fatalf("expected covered recipe first, got %v", got[0].ID)
		}
	})
}

func TestExplain(t *testing.T) {
	c := Candidate{
		Recipe: recipe.Recipe{
			EstimatedCostPerServing: 2.50,
			PrepTimeMinutes:         10,
			CookTimeMinutes:         15,
			NutritionPerServing:     recipe.NutritionInfo{ProteinG: 25},
		},
		PantryFit: pantry.FitScore{PercentSatisfied: 90, MissingItems: []string{"saffron"}},
	}
	got := Explain(c)
	for _, want := range []string{"90% of ingredients", "Only need: saffron", "Very budget-friendly", "Quick to make", "High protein"} {
		if !strings.Contains(got, want) {
			t.Errorf("explanation %q missing %q", got, want)
		}
	}
}

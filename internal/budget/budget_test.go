package budget

import (
	"math"
	"testing"

	"contextchef/internal/grocer"
	"contextchef/internal/recipe"
)

func price(item string, cost float64, onSale bool) grocer.StorePrice {
	return grocer.StorePrice{StoreID: "s-" + item, ItemName: item, Price: cost, Unit: "lb", OnSale: onSale}
}

func TestOptimize(t *testing.T) {
	t.Run("returns early when under budget with protein met", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Chicken", Quantity: 2, Unit: "lb", Substitutions: []string{"Tofu"}},
		}
		prices := []grocer.StorePrice{price("chicken", 1.00, false), price("tofu", 0.10, false)}
		nutrition := map[string]recipe.NutritionInfo{"chicken": {ProteinG: 10}}

		got := Optimize(ingredients, 5.00, 1, prices, nutrition, DefaultMinProtein, DefaultMinFiber)
		if !got.MeetsNutritionGoals {
			t.Error("expected nutrition goals met")
		}
		if got.Ingredients[0].Substituted {
			t.Error("no substitution should happen under budget")
		}
		if math.Abs(got.TotalCost-2.00) > 1e-9 {
			t.Errorf("TotalCost = %v, want 2.00", got.TotalCost)
		}
	})

	t.Run("sale entries get a ten percent preference", func(t *testing.T) {
		ingredients := []recipe.Ingredient{{Name: "Rice", Quantity: 1, Unit: "lb"}}
		prices := []grocer.StorePrice{
			{StoreID: "regular", ItemName: "Rice", Price: 1.00, Unit: "lb"},
			{StoreID: "sale", ItemName: "Rice", Price: 0.85, Unit: "lb", OnSale: true},
		}

		got := Optimize(ingredients, 10, 1, prices, nil, 0, 0)
		if got.Ingredients[0].StoreID != "sale" {
			t.Errorf("StoreID = %q, want the sale store", got.Ingredients[0].StoreID)
		}
		// The charged price is the sale price itself, not the preference-
		// adjusted one.
		if math.Abs(got.Ingredients[0].Price-0.85) > 1e-9 {
			t.Errorf("Price = %v, want 0.85", got.Ingredients[0].Price)
		}
	})

	t.Run("marginal sale does not beat a cheaper regular price", func(t *testing.T) {
		ingredients := []recipe.Ingredient{{Name: "Rice", Quantity: 1, Unit: "lb"}}
		prices := []grocer.StorePrice{
			{StoreID: "regular", ItemName: "Rice", Price: 1.00, Unit: "lb"},
			{StoreID: "sale", ItemName: "Rice", Price: 0.95, Unit: "lb", OnSale: true},
		}

		got := Optimize(ingredients, 10, 1, prices, nil, 0, 0)
		if got.Ingredients[0].StoreID != "regular" {
			t.Errorf("StoreID = %q, want the regular store", got.Ingredients[0].StoreID)
		}
	})

	t.Run("substitution cost is monotonically non-increasing", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Beef", Quantity: 1, Unit: "lb", Substitutions: []string{"Lentils"}},
			{Name: "Rice", Quantity: 1, Unit: "lb"},
		}
		prices := []grocer.StorePrice{
			price("beef", 10.00, false),
			price("lentils", 2.00, false),
			price("rice", 1.50, false),
		}

		before := Optimize(ingredients, 100, 1, prices, nil, 0, 0)
		after := Optimize(ingredients, 3.00, 1, prices, nil, 0, 0)
		if after.TotalCost > before.TotalCost {
			t.Errorf("substitution raised cost from %v to %v", before.TotalCost, after.TotalCost)
		}
		if after.TotalCost != 3.50 {
			t.Errorf("TotalCost = %v, want 3.50 after substituting lentils", after.TotalCost)
		}
	})

	t.Run("stops substituting once the target is reached", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Beef", Quantity: 1, Unit: "lb", Substitutions: []string{"Lentils"}},
			{Name: "Salmon", Quantity: 1, Unit: "lb", Substitutions: []string{"Tofu"}},
		}
		prices := []grocer.StorePrice{
			price("beef", 10.00, false),
			price("lentils", 1.00, false),
			price("salmon", 8.00, false),
			price("tofu", 1.00, false),
		}

		got := Optimize(ingredients, 9.00, 1, prices, nil, 0, 0)
		if math.Abs(got.TotalCost-9.00) > 1e-9 {
			t.Fatalf("TotalCost = %v, want 9.00", got.TotalCost)
		}
		for _, line := range got.Ingredients {
			if line.Name == "Tofu" {
				t.Error("salmon should not be substituted once the target is met")
			}
		}
	})

	t.Run("protein floor blocks a cheaper substitute", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Chicken", Quantity: 1, Unit: "lb", Substitutions: []string{"Tofu"}},
		}
		prices := []grocer.StorePrice{price("chicken", 10.00, false), price("tofu", 1.00, false)}
		nutrition := map[string]recipe.NutritionInfo{
			"chicken": {ProteinG: 20},
			"tofu":    {ProteinG: 2},
		}

		got := Optimize(ingredients, 5.00, 1, prices, nutrition, DefaultMinProtein, DefaultMinFiber)
		if got.Ingredients[0].Substituted {
			t.Error("substitute violating the protein floor was accepted")
		}
		if !got.MeetsNutritionGoals {
			t.Error("the unsubstituted recipe still meets the protein floor")
		}
	})

	t.Run("best effort result when budget is unreachable", func(t *testing.T) {
		ingredients := []recipe.Ingredient{{Name: "Saffron", Quantity: 1, Unit: "g"}}
		prices := []grocer.StorePrice{{StoreID: "s1", ItemName: "Saffron", Price: 50.00, Unit: "g"}}

		got := Optimize(ingredients, 1.00, 1, prices, nil, 0, 0)
		if math.Abs(got.TotalCost-50.00) > 1e-9 {
			t.Errorf("TotalCost = %v, want the best achievable 50.00", got.TotalCost)
		}
	})

	t.Run("missing prices and nutrition use defaults", func(t *testing.T) {
		ingredients := []recipe.Ingredient{{Name: "Mystery", Quantity: 3, Unit: "lb"}}

		got := Optimize(ingredients, 100, 1, nil, nil, 0, 0)
		if got.Ingredients[0].StoreID != "unknown" {
			t.Errorf("StoreID = %q, want unknown", got.Ingredients[0].StoreID)
		}
		if math.Abs(got.TotalCost-6.00) > 1e-9 {
			t.Errorf("TotalCost = %v, want 6.00 at the default price", got.TotalCost)
		}
		if math.Abs(got.Nutrition.ProteinG-15.0) > 1e-9 {
			t.Errorf("ProteinG = %v, want 15 from the default estimate", got.Nutrition.ProteinG)
		}
	})
}

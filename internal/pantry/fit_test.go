package pantry

import (
	"testing"

	"contextchef/internal/recipe"
	"contextchef/internal/taxonomy"
)

var fitTestPrices = map[string]float64{
	"milk":   3.00,
	"eggs":   2.50,
	"flour":  1.50,
	"sugar":  2.00,
	"butter": 4.00,
}

func TestScoreFit(t *testing.T) {
	t.Run("full pantry satisfies everything", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Milk", Quantity: 1, Unit: "cup"},
			{Name: "Eggs", Quantity: 2, Unit: "items"},
		}
		snapshot := []Item{
			{Name: "Milk", Quantity: 4, Unit: "cup"},
			{Name: "Eggs", Quantity: 12, Unit: "items"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 100 {
			t.Errorf("PercentSatisfied = %d, want 100", got.PercentSatisfied)
		}
		if len(got.MissingItems) != 0 {
			t.Errorf("MissingItems = %v, want none", got.MissingItems)
		}
		if got.EstimatedExtraCost != 0 {
			t.Errorf("EstimatedExtraCost = %v, want 0", got.EstimatedExtraCost)
		}
		if got.TotalScore < 90 {
			t.Errorf("TotalScore = %d, want at least 90", got.TotalScore)
		}
	})

	t.Run("identifies missing items", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Milk", Quantity: 1, Unit: "cup"},
			{Name: "Chocolate", Quantity: 100, Unit: "g"},
		}
		snapshot := []Item{
			{Name: "Milk", Quantity: 4, Unit: "cup"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 50 {
			t.Errorf("PercentSatisfied = %d, want 50", got.PercentSatisfied)
		}
		if len(got.MissingItems) != 1 || got.MissingItems[0] != "Chocolate" {
			t.Errorf("MissingItems = %v, want [Chocolate]", got.MissingItems)
		}
		if got.EstimatedExtraCost <= 0 {
			t.Errorf("EstimatedExtraCost = %v, want > 0", got.EstimatedExtraCost)
		}
	})

	t.Run("optional ingredients never go missing", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Flour", Quantity: 2, Unit: "cup"},
			{Name: "Chocolate Chips", Quantity: 1, Unit: "cup", Optional: true},
		}
		snapshot := []Item{
			{Name: "Flour", Quantity: 5, Unit: "cup"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 100 {
			t.Errorf("PercentSatisfied = %d, want 100", got.PercentSatisfied)
		}
		for _, name := range got.MissingItems {
			if name == "Chocolate Chips" {
				t.Error("optional ingredient reported missing")
			}
		}
	})

	t.Run("declared substitutions are consulted first", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Milk", Quantity: 1, Unit: "cup", Substitutions: []string{"Almond Milk", "Soy Milk"}},
		}
		snapshot := []Item{
			{Name: "Almond Milk", Quantity: 2, Unit: "cup"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 100 {
			t.Errorf("PercentSatisfied = %d, want 100", got.PercentSatisfied)
		}
		subs := got.SubstitutionOptions["Milk"]
		if len(subs) != 1 || subs[0] != "Almond Milk" {
			t.Errorf("SubstitutionOptions[Milk] = %v, want [Almond Milk]", subs)
		}
	})

	t.Run("insufficient quantity counts as missing", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Flour", Quantity: 5, Unit: "cup"},
		}
		snapshot := []Item{
			{Name: "Flour", Quantity: 2, Unit: "cup"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 0 {
			t.Errorf("PercentSatisfied = %d, want 0", got.PercentSatisfied)
		}
		if len(got.MissingItems) != 1 || got.MissingItems[0] != "Flour" {
			t.Errorf("MissingItems = %v, want [Flour]", got.MissingItems)
		}
	})

	t.Run("unit conversion satisfies across units", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Butter", Quantity: 4, Unit: "tbsp"},
		}
		snapshot := []Item{
			{Name: "Butter", Quantity: 1, Unit: "cup"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 100 {
			t.Errorf("PercentSatisfied = %d, want 100", got.PercentSatisfied)
		}
	})

	t.Run("unconvertible units fail closed", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Flour", Quantity: 1, Unit: "cup"},
		}
		snapshot := []Item{
			{Name: "Flour", Quantity: 500, Unit: "g"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, nil, taxonomy.None)
		if got.PercentSatisfied != 0 {
			t.Errorf("PercentSatisfied = %d, want 0 for unconvertible units", got.PercentSatisfied)
		}
	})

	t.Run("allergen removes substitute and pushes ingredient to missing", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Flour", Quantity: 2, Unit: "cup", Substitutions: []string{"Almond Flour", "Coconut Flour"}},
		}
		snapshot := []Item{
			{Name: "Almond Flour", Quantity: 3, Unit: "cup"},
		}

		got := ScoreFit(ingredients, snapshot, fitTestPrices, []string{"almond"}, taxonomy.None)
		if got.PercentSatisfied != 0 {
			t.Errorf("PercentSatisfied = %d, want 0", got.PercentSatisfied)
		}
		if len(got.MissingItems) != 1 || got.MissingItems[0] != "Flour" {
			t.Errorf("MissingItems = %v, want [Flour]", got.MissingItems)
		}
		for _, sub := range got.SubstitutionOptions["Flour"] {
			if sub == "Almond Flour" {
				t.Error("allergen-matching substitute recorded as an option")
			}
		}
	})

	t.Run("missing price falls back to category estimate", func(t *testing.T) {
		ingredients := []recipe.Ingredient{
			{Name: "Salmon Fillet", Quantity: 1, Unit: "lb", Tags: []string{"fish"}},
		}

		got := ScoreFit(ingredients, nil, fitTestPrices, nil, taxonomy.None)
		if got.EstimatedExtraCost != 8.00 {
			t.Errorf("EstimatedExtraCost = %v, want 8.00 from the fish category", got.EstimatedExtraCost)
		}
	})
}

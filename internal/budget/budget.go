package budget

import (
	"sort"
	"strings"

	"contextchef/internal/grocer"
	"contextchef/internal/pantry"
	"contextchef/internal/recipe"
)

// Nutrition floors applied per serving. The fiber floor is accepted by the
// signature but not enforced in the feasibility check; callers and tests
// depend on the protein-only gate.
const (
	DefaultMinProtein = 15.0
	DefaultMinFiber   = 5.0
)

// defaultPricePerUnit is charged for ingredients with no store price entry.
const defaultPricePerUnit = 2.0

// defaultNutrition stands in for ingredients missing from the nutrition
// table.
var defaultNutrition = recipe.NutritionInfo{Kcal: 100, ProteinG: 5, CarbG: 15, FatG: 3}

// PricedIngredient is one recipe ingredient with its assigned store and line
// price. Substituted lines keep the original name for display.
type PricedIngredient struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	StoreID      string  `json:"store_id"`
	Price        float64 `json:"price"`
	Substituted  bool    `json:"substituted,omitempty"`
	OriginalName string  `json:"original_name,omitempty"`
}

// Result is the outcome of a budget optimization pass. TotalCost is the best
// cost achieved even when the target was not reached.
type Result struct {
	Ingredients         []PricedIngredient   `json:"ingredients"`
	TotalCost           float64              `json:"total_cost"`
	Nutrition           recipe.NutritionInfo `json:"nutrition"`
	MeetsNutritionGoals bool                 `json:"meets_nutrition_goals"`
}

// Optimize assigns the cheapest priced source to each ingredient, then, if
// the recipe is over its cost target, greedily substitutes the costliest
// ingredients using their declared substitution lists while the protein
// floor holds.
func Optimize(ingredients []recipe.Ingredient, targetCostPerServing float64, servings int, storePrices []grocer.StorePrice, nutritionTable map[string]recipe.NutritionInfo, minProtein, minFiber float64) Result {
	targetTotalCost := targetCostPerServing * float64(servings)
	priceMap := indexPrices(storePrices)

	priced := make([]PricedIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		line := PricedIngredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
		if store, price, ok := bestPrice(priceMap[strings.ToLower(ing.Name)], ing.Quantity, ing.Unit); ok {
			line.StoreID = store
			line.Price = price
		} else {
			line.StoreID = "unknown"
			line.Price = defaultPricePerUnit * ing.Quantity
		}
		priced = append(priced, line)
	}

	totalCost := sumCost(priced)
	nutrition := nutritionPerServing(priced, nutritionTable, servings)

	if totalCost <= targetTotalCost && meetsRequirements(nutrition, minProtein, minFiber) {
		return Result{
			Ingredients:         priced,
			TotalCost:           totalCost,
			Nutrition:           nutrition,
			MeetsNutritionGoals: true,
		}
	}

	if totalCost > targetTotalCost {
		priced = substitute(priced, ingredients, priceMap, nutritionTable, targetTotalCost, servings, minProtein, minFiber)
		totalCost = sumCost(priced)
		nutrition = nutritionPerServing(priced, nutritionTable, servings)
	}

	return Result{
		Ingredients:         priced,
		TotalCost:           totalCost,
		Nutrition:           nutrition,
		MeetsNutritionGoals: meetsRequirements(nutrition, minProtein, minFiber),
	}
}

func indexPrices(storePrices []grocer.StorePrice) map[string][]grocer.StorePrice {
	priceMap := make(map[string][]grocer.StorePrice, len(storePrices))
	for _, sp := range storePrices {
		key := strings.ToLower(sp.ItemName)
		priceMap[key] = append(priceMap[key], sp)
	}
	return priceMap
}

// bestPrice picks the cheapest effective entry, giving sale-flagged entries a
// 10% preference in the comparison without changing the price charged. The
// required quantity is converted into the entry's unit before multiplying;
// an unconvertible pair keeps the quantity unchanged.
func bestPrice(entries []grocer.StorePrice, quantity float64, unit string) (string, float64, bool) {
	if len(entries) == 0 {
		return "", 0, false
	}

	best := entries[0]
	bestEffective := effectiveUnitPrice(best)
	for _, entry := range entries[1:] {
		if effective := effectiveUnitPrice(entry); effective < bestEffective {
			best = entry
			bestEffective = effective
		}
	}

	converted, ok := pantry.ConvertUnit(quantity, unit, best.Unit)
	if !ok {
		converted = quantity
	}
	return best.StoreID, best.Price * converted, true
}

func effectiveUnitPrice(entry grocer.StorePrice) float64 {
	if entry.OnSale {
		return entry.Price / 0.9
	}
	return entry.Price
}

// substitute walks the priced list most-expensive-first. The first declared
// substitute that is strictly cheaper and keeps the protein floor wins; the
// pass ends early once the target cost is reached.
func substitute(priced []PricedIngredient, originals []recipe.Ingredient, priceMap map[string][]grocer.StorePrice, nutritionTable map[string]recipe.NutritionInfo, targetCost float64, servings int, minProtein, minFiber float64) []PricedIngredient {
	declared := make(map[string][]string, len(originals))
	for _, ing := range originals {
		declared[ing.Name] = ing.Substitutions
	}

	sorted := make([]PricedIngredient, len(priced))
	copy(sorted, priced)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price > sorted[j].Price
	})

	for i := range sorted {
		for _, sub := range declared[sorted[i].Name] {
			store, price, ok := bestPrice(priceMap[strings.ToLower(sub)], sorted[i].Quantity, sorted[i].Unit)
			if !ok || price >= sorted[i].Price {
				continue
			}

			candidate := sorted[i]
			candidate.OriginalName = candidate.Name
			candidate.Name = sub
			candidate.StoreID = store
			candidate.Price = price
			candidate.Substituted = true

			trial := make([]PricedIngredient, len(sorted))
			copy(trial, sorted)
			trial[i] = candidate

			if !meetsRequirements(nutritionPerServing(trial, nutritionTable, servings), minProtein, minFiber) {
				continue
			}

			sorted[i] = candidate
			if sumCost(sorted) <= targetCost {
				return sorted
			}
			break
		}
	}
	return sorted
}

func sumCost(priced []PricedIngredient) float64 {
	total := 0.0
	for _, line := range priced {
		total += line.Price
	}
	return total
}

// nutritionPerServing totals ingredient nutrition scaled by quantity and
// divides by servings. Missing entries use the default estimate.
func nutritionPerServing(priced []PricedIngredient, nutritionTable map[string]recipe.NutritionInfo, servings int) recipe.NutritionInfo {
	var totals recipe.NutritionInfo
	for _, line := range priced {
		info, ok := nutritionTable[strings.ToLower(line.Name)]
		if !ok {
			info = defaultNutrition
		}
		totals.Kcal += info.Kcal * line.Quantity
		totals.ProteinG += info.ProteinG * line.Quantity
		totals.CarbG += info.CarbG * line.Quantity
		totals.FatG += info.FatG * line.Quantity
	}

	perServing := float64(servings)
	if perServing <= 0 {
		perServing = 1
	}
	return recipe.NutritionInfo{
		Kcal:     totals.Kcal / perServing,
		ProteinG: totals.ProteinG / perServing,
		CarbG:    totals.CarbG / perServing,
		FatG:     totals.FatG / perServing,
	}
}

// meetsRequirements gates on the protein floor only. minFiber is deliberately
// unused here.
func meetsRequirements(nutrition recipe.NutritionInfo, minProtein, minFiber float64) bool {
	return nutrition.ProteinG >= minProtein
}

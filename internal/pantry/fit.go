package pantry

import (
	"math"
	"strings"

	"contextchef/internal/recipe"
	"contextchef/internal/substitution"
	"contextchef/internal/taxonomy"
)

// FitScore measures how well a recipe is covered by the current pantry plus
// viable substitutions. It is a pure function result, never persisted.
type FitScore struct {
	TotalScore          int                 `json:"total_score"`
	PercentSatisfied    int                 `json:"percent_satisfied"`
	MissingItems        []string            `json:"missing_items"`
	SubstitutionOptions map[string][]string `json:"substitution_options"`
	EstimatedExtraCost  float64             `json:"estimated_extra_cost"`
}

// ScoreFit scores one recipe's ingredient list against a pantry snapshot.
// Only non-optional ingredients count. Prices is a lower-cased name to
// per-unit price lookup; items without an entry fall back to the category
// price estimate.
func ScoreFit(ingredients []recipe.Ingredient, snapshot []Item, prices map[string]float64, allergens []string, profile taxonomy.Profile) FitScore {
	stock := indexByName(snapshot)

	score := FitScore{
		MissingItems:        []string{},
		SubstitutionOptions: map[string][]string{},
	}

	required := 0
	satisfied := 0
	substituted := 0

	for _, ing := range ingredients {
		if ing.Optional {
			continue
		}
		required++

		if stockCovers(stock, ing.Name, ing.Quantity, ing.Unit) {
			satisfied++
			continue
		}

		matched := false
		for _, alt := range substituteOptions(ing, allergens, profile) {
			if stockCovers(stock, alt, ing.Quantity, ing.Unit) {
				score.SubstitutionOptions[ing.Name] = append(score.SubstitutionOptions[ing.Name], alt)
				matched = true
				break
			}
		}
		if matched {
			satisfied++
			substituted++
			continue
		}

		score.MissingItems = append(score.MissingItems, ing.Name)
		score.EstimatedExtraCost += unitPrice(prices, ing.Name, ing.Tags) * ing.Quantity
	}

	percent := 0.0
	if required > 0 {
		percent = float64(satisfied) / float64(required) * 100
	}
	score.PercentSatisfied = int(math.Round(percent))

	missing := len(score.MissingItems)
	costScore := math.Max(0, 100-10*score.EstimatedExtraCost)
	subScore := float64(substituted) / math.Max(float64(missing), 1) * 100

	total := 0.6*percent + 0.3*costScore + 0.1*subScore
	score.TotalScore = clampScore(int(math.Round(total)))
	score.EstimatedExtraCost = math.Round(score.EstimatedExtraCost*100) / 100
	return score
}

// substituteOptions merges the ingredient's declared substitution list with
// the generic table, declared entries first, with allergen and profile
// filtering applied to both.
func substituteOptions(ing recipe.Ingredient, allergens []string, profile taxonomy.Profile) []string {
	seen := map[string]bool{}
	var options []string
	for _, alt := range ing.Substitutions {
		if containsAllergen(alt, allergens) || taxonomy.SubstituteUnsuitable(profile, alt) {
			continue
		}
		key := strings.ToLower(alt)
		if !seen[key] {
			seen[key] = true
			options = append(options, alt)
		}
	}
	for _, alt := range substitution.Resolve(ing.Name, allergens, profile) {
		key := strings.ToLower(alt)
		if !seen[key] {
			seen[key] = true
			options = append(options, alt)
		}
	}
	return options
}

// stockCovers reports whether the pantry holds at least the required quantity
// of the named item. An unconvertible unit pair counts as insufficient.
func stockCovers(stock map[string][]Item, name string, quantity float64, unit string) bool {
	for _, item := range stock[strings.ToLower(strings.TrimSpace(name))] {
		have, ok := ConvertUnit(item.Quantity, item.Unit, unit)
		if !ok {
			continue
		}
		if have >= quantity {
			return true
		}
	}
	return false
}

func indexByName(snapshot []Item) map[string][]Item {
	stock := make(map[string][]Item, len(snapshot))
	for _, item := range snapshot {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		stock[key] = append(stock[key], item)
	}
	return stock
}

func unitPrice(prices map[string]float64, name string, tags []string) float64 {
	if price, ok := prices[strings.ToLower(strings.TrimSpace(name))]; ok {
		return price
	}
	return taxonomy.EstimateUnitPrice(name, tags)
}

func containsAllergen(name string, allergens []string) bool {
	lower := strings.ToLower(name)
	for _, allergen := range allergens {
		if allergen == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(allergen)) {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

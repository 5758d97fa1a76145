package planner

import (
	"strings"

	"contextchef/internal/pantry"
	"contextchef/internal/ranker"
	"contextchef/internal/recipe"
	"contextchef/internal/shopping"
	"contextchef/internal/taxonomy"
)

const planDays = 7

// cooldownDays is how long a used recipe stays out of the eligible pool.
const cooldownDays = 3

var slotTags = []struct {
	slot string
	tags []string
}{
	{"breakfast", []string{"breakfast"}},
	{"lunch", []string{"lunch", "main"}},
	{"dinner", []string{"dinner", "main"}},
}

// BuildWeek assembles a 7-day, 3-meal plan. Each slot runs the ranker with
// slot-specific required tags against the catalog minus recipes still in
// cooldown; slots with no surviving candidate stay empty. The shopping
// aggregate nets each scaled ingredient against remaining pantry stock.
func BuildWeek(constraints Constraints, catalog []recipe.Recipe, snapshot []pantry.Item, prices map[string]float64, allergens []string) Result {
	days := make([]Day, 0, planDays)
	lastUsed := map[string]int{}
	stock := copyStock(snapshot)
	aggregate := newShoppingAggregate()
	byID := indexCatalog(catalog)

	for day := 0; day < planDays; day++ {
		// Release recipes last used before day-2 back into the pool, so
		// reuse is possible from day 3 onward.
		if day >= cooldownDays {
			for id, usedDay := range lastUsed {
				if usedDay < day-cooldownDays+1 {
					delete(lastUsed, id)
				}
			}
		}

		var plan Day
		for _, slot := range slotTags {
			candidate := pickForSlot(constraints, slot.tags, catalog, lastUsed, snapshot, prices, allergens)
			if candidate == nil {
				continue
			}

			ref := &MealRef{RecipeID: candidate.ID, Servings: constraints.ServingsPerMeal}
			switch slot.slot {
			case "breakfast":
				plan.Breakfast = ref
			case "lunch":
				plan.Lunch = ref
			case "dinner":
				plan.Dinner = ref
			}
			lastUsed[candidate.ID] = day
			aggregate.add(candidate.Recipe, stock, constraints.ServingsPerMeal, prices)
		}
		days = append(days, plan)
	}

	result := Result{
		Days:          days,
		ShoppingItems: aggregate.items(),
	}
	result.TotalCost, result.AvgNutritionPerDay = planTotals(days, byID)
	return result
}

// pickForSlot ranks the eligible catalog for one slot and applies the
// variety bonuses before choosing.
func pickForSlot(constraints Constraints, tags []string, catalog []recipe.Recipe, inCooldown map[string]int, snapshot []pantry.Item, prices map[string]float64, allergens []string) *ranker.Candidate {
	eligible := make([]recipe.Recipe, 0, len(catalog))
	for _, rec := range catalog {
		if _, held := inCooldown[rec.ID]; !held {
			eligible = append(eligible, rec)
		}
	}

	slotConstraints := constraints.Ranking
	slotConstraints.RequiredTags = append(append([]string{}, constraints.Ranking.RequiredTags...), tags...)

	candidates := ranker.Rank(slotConstraints, eligible, snapshot, prices, allergens)
	if len(candidates) == 0 {
		return nil
	}

	best := 0
	bestScore := adjustedScore(candidates[0])
	for i := 1; i < len(candidates); i++ {
		if score := adjustedScore(candidates[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &candidates[best]
}

// adjustedScore layers the planner's variety preferences on the ranker's
// final score.
func adjustedScore(c ranker.Candidate) float64 {
	score := c.FinalScore
	if c.Cuisine != "" {
		score += 5
	}
	if len(c.PantryFit.MissingItems) <= 2 {
		score += 10
	}
	return score
}

// shoppingAggregate accumulates shortfalls keyed by name plus unit,
// preserving first-seen order.
type shoppingAggregate struct {
	order []string
	lines map[string]*shopping.ListItem
}

func newShoppingAggregate() *shoppingAggregate {
	return &shoppingAggregate{lines: map[string]*shopping.ListItem{}}
}

func (a *shoppingAggregate) add(rec recipe.Recipe, stock map[string][]*pantry.Item, servings int, prices map[string]float64) {
	for _, ing := range rec.Ingredients {
		needed := ing.Quantity * float64(servings)
		toBuy := consumeStock(stock, ing.Name, needed, ing.Unit)
		if toBuy <= 0 {
			continue
		}

		price, ok := prices[strings.ToLower(ing.Name)]
		if !ok {
			price = taxonomy.DefaultUnitPrice
		}

		key := strings.ToLower(ing.Name) + "_" + strings.ToLower(ing.Unit)
		line, ok := a.lines[key]
		if !ok {
			line = &shopping.ListItem{Name: ing.Name, Unit: ing.Unit}
			a.lines[key] = line
			a.order = append(a.order, key)
		}
		line.Quantity += toBuy
		line.EstimatedPrice += toBuy * price
	}
}

func (a *shoppingAggregate) items() []shopping.ListItem {
	items := make([]shopping.ListItem, 0, len(a.order))
	for _, key := range a.order {
		items = append(items, *a.lines[key])
	}
	return items
}

// consumeStock draws the needed quantity from remaining pantry stock and
// returns the shortfall to buy. Stock in unconvertible units is left alone.
func consumeStock(stock map[string][]*pantry.Item, name string, needed float64, unit string) float64 {
	toBuy := needed
	for _, item := range stock[strings.ToLower(strings.TrimSpace(name))] {
		if toBuy <= 0 {
			break
		}
		available, ok := pantry.ConvertUnit(item.Quantity, item.Unit, unit)
		if !ok || available <= 0 {
			continue
		}

		use := available
		if use > toBuy {
			use = toBuy
		}
		toBuy -= use

		if drawn, ok := pantry.ConvertUnit(use, unit, item.Unit); ok {
			item.Quantity -= drawn
			if item.Quantity < 0 {
				item.Quantity = 0
			}
		}
	}
	return toBuy
}

func copyStock(snapshot []pantry.Item) map[string][]*pantry.Item {
	stock := make(map[string][]*pantry.Item, len(snapshot))
	for _, item := range snapshot {
		copied := item
		key := strings.ToLower(strings.TrimSpace(item.Name))
		stock[key] = append(stock[key], &copied)
	}
	return stock
}

func indexCatalog(catalog []recipe.Recipe) map[string]recipe.Recipe {
	byID := make(map[string]recipe.Recipe, len(catalog))
	for _, rec := range catalog {
		byID[rec.ID] = rec
	}
	return byID
}

// planTotals sums cost and nutrition over filled slots. Nutrition averages
// over all seven days on purpose.
func planTotals(days []Day, byID map[string]recipe.Recipe) (float64, recipe.NutritionInfo) {
	totalCost := 0.0
	var total recipe.NutritionInfo
	filled := 0

	for _, day := range days {
		for _, ref := range []*MealRef{day.Breakfast, day.Lunch, day.Dinner} {
			if ref == nil {
				continue
			}
			rec, ok := byID[ref.RecipeID]
			if !ok {
				continue
			}
			servings := float64(ref.Servings)
			totalCost += rec.EstimatedCostPerServing * servings
			total.Kcal += rec.NutritionPerServing.Kcal * servings
			total.ProteinG += rec.NutritionPerServing.ProteinG * servings
			total.CarbG += rec.NutritionPerServing.CarbG * servings
			total.FatG += rec.NutritionPerServing.FatG * servings
			filled++
		}
	}

	if filled == 0 {
		return totalCost, recipe.NutritionInfo{}
	}
	return totalCost, recipe.NutritionInfo{
		Kcal:     total.Kcal / planDays,
		ProteinG: total.ProteinG / planDays,
		CarbG:    total.CarbG / planDays,
		FatG:     total.FatG / planDays,
	}
}

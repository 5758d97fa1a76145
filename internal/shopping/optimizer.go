package shopping

import (
	"math"
	"sort"
	"strings"
	"time"

	"contextchef/internal/grocer"
)

const (
	// bigWinThreshold is the per-item saving that qualifies an item for a
	// dedicated store visit.
	bigWinThreshold = 2.0
	// extraTripCost is the assumed cost of each additional store visited.
	extraTripCost = 5.0
	// distancePenalty weights miles against dollars when ranking stores.
	distancePenalty = 0.5
)

// categorySwap is one row of the fixed substitution table applied when the
// optimized list still exceeds budget.
type categorySwap struct {
	from           string
	to             string
	savingsPercent float64
	reason         string
}

var categorySwaps = []categorySwap{
	{"organic", "regular", 30, "Switch to non-organic"},
	{"name brand", "store brand", 25, "Try store brand"},
	{"fresh", "frozen", 40, "Use frozen instead"},
	{"meat", "beans/lentils", 60, "Plant-based protein"},
	{"cheese", "nutritional yeast", 50, "Cheese alternative"},
}

// Optimize partitions a shopping list across stores, trading per-item sale
// savings against travel distance. Sales are only honored inside their
// validity window relative to the injected now. A maxBudget of zero means no
// budget ceiling. Store iteration follows input order so ties resolve
// reproducibly.
func Optimize(items []ListItem, stores []grocer.Store, sales []grocer.Sale, userLocation grocer.Location, maxBudget float64, now time.Time) Optimized {
	salesByStore := indexValidSales(sales, now)

	plans := make([]StorePlan, 0, len(stores))
	for _, store := range stores {
		plans = append(plans, priceAtStore(items, store, salesByStore[store.ID], userLocation))
	}

	chosen := chooseStores(plans, items)

	result := Optimized{
		Stores:                 chosen,
		SuggestedSubstitutions: []Substitution{},
	}
	for _, plan := range chosen {
		result.TotalCost += plan.Subtotal
		result.TotalSavings += plan.Savings
	}

	if maxBudget > 0 && result.TotalCost > maxBudget {
		result.SuggestedSubstitutions = suggestSubstitutions(items, result.TotalCost-maxBudget)
	}
	return result
}

func indexValidSales(sales []grocer.Sale, now time.Time) map[string]map[string]grocer.Sale {
	byStore := map[string]map[string]grocer.Sale{}
	for _, sale := range sales {
		if now.Before(sale.ValidFrom) || now.After(sale.ValidTo) {
			continue
		}
		if byStore[sale.StoreID] == nil {
			byStore[sale.StoreID] = map[string]grocer.Sale{}
		}
		byStore[sale.StoreID][strings.ToLower(sale.ItemName)] = sale
	}
	return byStore
}

// priceAtStore prices the entire list at one store. Savings are clamped at
// zero so a sale price above the estimate never inflates the plan.
func priceAtStore(items []ListItem, store grocer.Store, storeSales map[string]grocer.Sale, userLocation grocer.Location) StorePlan {
	plan := StorePlan{
		Store:    store,
		Distance: haversineMiles(userLocation, store.Location),
	}

	for _, item := range items {
		priced := PricedItem{ListItem: item, RegularPrice: item.EstimatedPrice}
		priced.PreferredStoreID = store.ID

		if sale, ok := storeSales[strings.ToLower(item.Name)]; ok {
			priced.OnSale = true
			priced.SalePrice = sale.Price
			priced.Savings = math.Max(0, priced.RegularPrice-sale.Price)
		}

		plan.Subtotal += priced.effectivePrice() * item.Quantity
		plan.Savings += priced.Savings
		plan.Items = append(plan.Items, priced)
	}
	return plan
}

func (p PricedItem) effectivePrice() float64 {
	if p.OnSale {
		return p.SalePrice
	}
	return p.RegularPrice
}

// chooseStores decides between the best single-store plan and a multi-store
// split where items with qualifying savings get their own visit.
func chooseStores(plans []StorePlan, items []ListItem) []StorePlan {
	if len(plans) <= 1 {
		return plans
	}

	best := bestSinglePlan(plans)

	// Assign each big-win item to its best-saving store, first store wins
	// ties.
	assignments := make(map[string]int, len(items))
	for i, item := range items {
		bestPlan := -1
		bestSaving := bigWinThreshold
		for p := range plans {
			if saving := plans[p].Items[i].Savings; saving > bestSaving {
				bestSaving = saving
				bestPlan = p
			}
		}
		if bestPlan >= 0 {
			assignments[item.Name] = bestPlan
		}
	}
	if len(assignments) == 0 {
		return []StorePlan{best}
	}

	// Everything else goes to the nearest store.
	nearest := 0
	for p := range plans {
		if plans[p].Distance < plans[nearest].Distance {
			nearest = p
		}
	}
	for _, item := range items {
		if _, ok := assignments[item.Name]; !ok {
			assignments[item.Name] = nearest
		}
	}

	multi := rebuildPlans(plans, items, assignments)

	multiSavings := 0.0
	for _, plan := range multi {
		multiSavings += plan.Savings
	}
	tripCost := float64(len(multi)-1) * extraTripCost

	if multiSavings-tripCost > best.Savings {
		return multi
	}
	return []StorePlan{best}
}

func bestSinglePlan(plans []StorePlan) StorePlan {
	best := plans[0]
	bestValue := best.Savings - best.Distance*distancePenalty
	for _, plan := range plans[1:] {
		if value := plan.Savings - plan.Distance*distancePenalty; value > bestValue {
			best = plan
			bestValue = value
		}
	}
	return best
}

// rebuildPlans regroups the priced items by assigned store, keeping store
// input order and recomputing subtotals.
func rebuildPlans(plans []StorePlan, items []ListItem, assignments map[string]int) []StorePlan {
	grouped := map[int][]PricedItem{}
	for i, item := range items {
		p := assignments[item.Name]
		grouped[p] = append(grouped[p], plans[p].Items[i])
	}

	var result []StorePlan
	for p := range plans {
		pricedItems, ok := grouped[p]
		if !ok {
			continue
		}
		plan := StorePlan{
			Store:    plans[p].Store,
			Items:    pricedItems,
			Distance: plans[p].Distance,
		}
		for _, item := range pricedItems {
			plan.Subtotal += item.effectivePrice() * item.Quantity
			plan.Savings += item.Savings
		}
		result = append(result, plan)
	}
	return result
}

// suggestSubstitutions walks the costliest items first, applying the fixed
// category swap table until the budget deficit is covered or five
// suggestions are collected.
func suggestSubstitutions(items []ListItem, amountToSave float64) []Substitution {
	sorted := make([]ListItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EstimatedPrice*sorted[i].Quantity > sorted[j].EstimatedPrice*sorted[j].Quantity
	})

	substitutions := []Substitution{}
	saved := 0.0

	for _, item := range sorted {
		if saved >= amountToSave || len(substitutions) >= 5 {
			break
		}
		for _, swap := range categorySwaps {
			if !strings.Contains(strings.ToLower(item.Name), swap.from) {
				continue
			}
			amount := item.EstimatedPrice * item.Quantity * swap.savingsPercent / 100
			substitutions = append(substitutions, Substitution{
				Original:      item.Name,
				Substitute:    replaceFold(item.Name, swap.from, swap.to),
				SavingsAmount: amount,
				Reason:        swap.reason,
			})
			saved += amount
			break
		}
	}
	return substitutions
}

// replaceFold replaces the first case-insensitive occurrence of from with to.
func replaceFold(s, from, to string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(from))
	if idx < 0 {
		return s
	}
	return s[:idx] + to + s[idx+len(from):]
}

// haversineMiles is the great-circle distance between two points.
func haversineMiles(from, to grocer.Location) float64 {
	const earthRadiusMiles = 3959

	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLon := (to.Lon - from.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(from.Lat*math.Pi/180)*math.Cos(to.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

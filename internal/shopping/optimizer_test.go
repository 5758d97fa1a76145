package shopping

import (
	"math"
	"strings"
	"testing"
	"time"

	"contextchef/internal/grocer"
)

var optimizeNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func weekSale(storeID, item string, price float64) grocer.Sale {
	return grocer.Sale{
		StoreID:   storeID,
		ItemName:  item,
		Price:     price,
		Unit:      "lb",
		ValidFrom: optimizeNow.Add(-24 * time.Hour),
		ValidTo:   optimizeNow.Add(24 * time.Hour),
	}
}

func testStores() []grocer.Store {
	return []grocer.Store{
		{ID: "a", Name: "Greenmart", Location: grocer.Location{Lat: 40.70, Lon: -74.00, Address: "1 Main St"}},
		{ID: "b", Name: "Valufoods", Location: grocer.Location{Lat: 40.71, Lon: -74.01, Address: "2 Oak Ave"}},
	}
}

func testItems() []ListItem {
	return []ListItem{
		{Name: "Steak", Quantity: 1, Unit: "lb", EstimatedPrice: 12.00},
		{Name: "Rice", Quantity: 2, Unit: "lb", EstimatedPrice: 1.50},
		{Name: "Broccoli", Quantity: 1, Unit: "lb", EstimatedPrice: 2.00},
	}
}

func userAt(store grocer.Store) grocer.Location {
	return store.Location
}

func TestOptimize(t *testing.T) {
	t.Run("every item lands in exactly one store", func(t *testing.T) {
		items := testItems()
		got := Optimize(items, testStores(), nil, userAt(testStores()[0]), 0, optimizeNow)

		counts := map[string]int{}
		for _, plan := range got.Stores {
			for _, item := range plan.Items {
				counts[item.Name]++
			}
		}
		for _, item := range items {
			if counts[item.Name] != 1 {
				t.Errorf("item %q assigned %d times, want exactly once", item.Name, counts[item.Name])
			}
		}
	})

	t.Run("subtotals sum to total cost", func(t *testing.T) {
		sales := []grocer.Sale{weekSale("a", "Steak", 6.00), weekSale("b", "Rice", 0.50)}
		got := Optimize(testItems(), testStores(), sales, userAt(testStores()[0]), 0, optimizeNow)

		sum := 0.0
		for _, plan := range got.Stores {
			sum += plan.Subtotal
		}
		if math.Abs(sum-got.TotalCost) > 1e-9 {
			t.Errorf("subtotals sum to %v, TotalCost is %v", sum, got.TotalCost)
		}
	})

	t.Run("expired sales are ignored", func(t *testing.T) {
		expired := weekSale("a", "Steak", 6.00)
		expired.ValidTo = optimizeNow.Add(-time.Hour)

		got := Optimize(testItems(), testStores(), []grocer.Sale{expired}, userAt(testStores()[0]), 0, optimizeNow)
		if got.TotalSavings != 0 {
			t.Errorf("TotalSavings = %v, want 0 when the only sale is expired", got.TotalSavings)
		}
	})

	t.Run("sale above regular price never yields negative savings", func(t *testing.T) {
		sales := []grocer.Sale{weekSale("a", "Rice", 9.00)}
		got := Optimize(testItems(), testStores(), sales, userAt(testStores()[0]), 0, optimizeNow)
		for _, plan := range got.Stores {
			for _, item := range plan.Items {
				if item.Savings < 0 {
					t.Errorf("item %q has negative savings %v", item.Name, item.Savings)
				}
			}
		}
	})

	t.Run("splits stores when big wins beat the trip cost", func(t *testing.T) {
		sales := []grocer.Sale{
			weekSale("a", "Steak", 6.00),  // saves $6 at a
			weekSale("b", "Salmon", 3.00), // saves $7 at b
		}
		items := append(testItems(), ListItem{Name: "Salmon", Quantity: 1, Unit: "lb", EstimatedPrice: 10.00})

		got := Optimize(items, testStores(), sales, userAt(testStores()[0]), 0, optimizeNow)
		if len(got.Stores) != 2 {
			t.Fatalf("expected a two-store split, got %d store(s)", len(got.Stores))
		}

		byStore := map[string][]string{}
		for _, plan := range got.Stores {
			for _, item := range plan.Items {
				byStore[plan.Store.ID] = append(byStore[plan.Store.ID], item.Name)
			}
		}
		if !contains(byStore["a"], "Steak") {
			t.Errorf("Steak should be bought at store a, got %v", byStore)
		}
		if !contains(byStore["b"], "Salmon") {
			t.Errorf("Salmon should be bought at store b, got %v", byStore)
		}
	})

	t.Run("stays single-store when savings do not cover the extra trip", func(t *testing.T) {
		sales := []grocer.Sale{weekSale("b", "Broccoli", 1.00)} // saves $1, below the threshold
		got := Optimize(testItems(), testStores(), sales, userAt(testStores()[0]), 0, optimizeNow)
		if len(got.Stores) != 1 {
			t.Fatalf("expected a single store, got %d", len(got.Stores))
		}
	})

	t.Run("suggests substitutions only over budget", func(t *testing.T) {
		items := []ListItem{
			{Name: "Organic Apples", Quantity: 2, Unit: "lb", EstimatedPrice: 5.00},
			{Name: "Fresh Spinach", Quantity: 1, Unit: "lb", EstimatedPrice: 4.00},
		}
		got := Optimize(items, testStores(), nil, userAt(testStores()[0]), 5.00, optimizeNow)

		if len(got.SuggestedSubstitutions) == 0 {
			t.Fatal("expected substitution suggestions when over budget")
		}
		first := got.SuggestedSubstitutions[0]
		if first.Original != "Organic Apples" {
			t.Errorf("costliest item should be suggested first, got %q", first.Original)
		}
		if first.Substitute != "regular Apples" {
			t.Errorf("Substitute = %q, want %q", first.Substitute, "regular Apples")
		}
		if math.Abs(first.SavingsAmount-3.00) > 1e-9 {
			t.Errorf("SavingsAmount = %v, want 3.00", first.SavingsAmount)
		}

		under := Optimize(items, testStores(), nil, userAt(testStores()[0]), 100.00, optimizeNow)
		if len(under.SuggestedSubstitutions) != 0 {
			t.Errorf("expected no suggestions under budget, got %v", under.SuggestedSubstitutions)
		}
	})

	t.Run("caps suggestions at five", func(t *testing.T) {
		var items []ListItem
		for _, name := range []string{"Organic A", "Organic B", "Organic C", "Organic D", "Organic E", "Organic F", "Organic G"} {
			items = append(items, ListItem{Name: name, Quantity: 1, Unit: "lb", EstimatedPrice: 5.00})
		}
		got := Optimize(items, testStores(), nil, userAt(testStores()[0]), 1.00, optimizeNow)
		if len(got.SuggestedSubstitutions) > 5 {
			t.Errorf("got %d suggestions, want at most 5", len(got.SuggestedSubstitutions))
		}
	})
}

func TestExport(t *testing.T) {
	list := Optimized{
		Stores: []StorePlan{{
			Store: testStores()[0],
			Items: []PricedItem{{
				ListItem:     ListItem{Name: "Rice", Quantity: 2, Unit: "lb", EstimatedPrice: 1.50},
				OnSale:       true,
				SalePrice:    1.00,
				RegularPrice: 1.50,
				Savings:      0.50,
			}},
			Subtotal: 2.00,
			Savings:  0.50,
			Distance: 1.2,
		}},
		TotalCost:    2.00,
		TotalSavings: 0.50,
	}

	t.Run("text format flags sales", func(t *testing.T) {
		out := Export(list, FormatText)
		for _, want := range []string{"SHOPPING LIST", "GREENMART", "[ ] Rice - 2 lb (SALE!)", "Subtotal: $2.00"} {
			if !strings.Contains(out, want) {
				t.Errorf("text export missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("markdown format renders a table", func(t *testing.T) {
		out := Export(list, FormatMarkdown)
		for _, want := range []string{"# Shopping List", "## Greenmart", "| Rice | 2 lb | $2.00 | $0.50 |", "**Total Cost:** $2.00"} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown export missing %q:\n%s", want, out)
			}
		}
	})
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"contextchef/internal/budget"
	"contextchef/internal/clipper"
	"contextchef/internal/config"
	"contextchef/internal/grocer"
	"contextchef/internal/metrics"
	"contextchef/internal/pantry"
	"contextchef/internal/planner"
	"contextchef/internal/ranker"
	"contextchef/internal/recipe"
	"contextchef/internal/shopping"
	"contextchef/internal/storage"
	"contextchef/internal/taxonomy"
)

// App holds the application's dependencies and exposes its use cases.
type App struct {
	cfg           *config.Config
	grocerClient  grocer.Client
	recipeClipper *clipper.Clipper
	metricsStore  *metrics.Store
	planArchive   *storage.PlanArchive

	recipeRepo   *recipe.Repository
	pantryRepo   *pantry.Repository
	planRepo     *planner.Repository
	shoppingRepo *shopping.Repository
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	grocerClient grocer.Client,
	recipeClipper *clipper.Clipper,
	metricsStore *metrics.Store,
	planArchive *storage.PlanArchive,
	recipeRepo *recipe.Repository,
	pantryRepo *pantry.Repository,
	planRepo *planner.Repository,
	shoppingRepo *shopping.Repository,
) *App {
	return &App{
		cfg:           cfg,
		grocerClient:  grocerClient,
		recipeClipper: recipeClipper,
		metricsStore:  metricsStore,
		planArchive:   planArchive,
		recipeRepo:    recipeRepo,
		pantryRepo:    pantryRepo,
		planRepo:      planRepo,
		shoppingRepo:  shoppingRepo,
	}
}

// IngestRecipe clips a recipe from a URL into the catalog.
func (a *App) IngestRecipe(ctx context.Context, url string) (*recipe.Recipe, error) {
	fmt.Printf("Clipping recipe from %s...\n", url)

	start := time.Now()
	rec, err := a.recipeClipper.ClipURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to clip recipe: %w", err)
	}

	a.recordMetric(ctx, "ingest", start, 1)
	fmt.Printf("Saved '%s' (%s).\n", rec.Title, rec.ID)
	return rec, nil
}

// GeneratePlan builds a weekly meal plan from the catalog, the pantry, and
// current store prices, then persists and archives it.
func (a *App) GeneratePlan(ctx context.Context, userID string) (*planner.Result, error) {
	fmt.Println("Building weekly meal plan...")
	start := time.Now()

	catalog, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("recipe catalog is empty; clip some recipes first")
	}

	snapshot, err := a.pantryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pantry: %w", err)
	}

	prices := a.fetchPriceTable()
	household := a.cfg.Household

	constraints := planner.Constraints{
		Ranking: ranker.Constraints{
			MaxPricePerServing: household.MaxPricePerServing,
			DietaryProfile:     taxonomy.ParseProfile(household.DietaryProfile),
		},
		ServingsPerMeal: household.ServingsPerMeal,
	}

	result := planner.BuildWeek(constraints, catalog, snapshot, prices, household.Allergens)

	planJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	planID, err := a.planRepo.Save(ctx, userID, planJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	if err := a.planArchive.Save(userID, weekStart(time.Now()), result); err != nil {
		log.Printf("Warning: failed to archive plan: %v", err)
	}

	if len(result.ShoppingItems) > 0 {
		list := &shopping.List{
			UserID:     userID,
			MealPlanID: planID,
			Items:      result.ShoppingItems,
		}
		if _, err := a.shoppingRepo.Save(ctx, list); err != nil {
			log.Printf("Warning: failed to save shopping list: %v", err)
		}
	}

	a.recordMetric(ctx, "plan", start, countMeals(result.Days))
	return &result, nil
}

// OptimizeShopping fetches stores and sales and partitions the latest
// shopping list across stores within the weekly budget.
func (a *App) OptimizeShopping(ctx context.Context, userID string) (*shopping.Optimized, error) {
	fmt.Println("Optimizing shopping list...")
	start := time.Now()

	list, err := a.shoppingRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shopping list: %w", err)
	}
	if list == nil || len(list.Items) == 0 {
		return nil, fmt.Errorf("no shopping list found; generate a plan first")
	}

	stores, err := a.grocerClient.FetchStores()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stores: %w", err)
	}
	sales, err := a.grocerClient.FetchSales()
	if err != nil {
		log.Printf("Warning: failed to fetch sales, optimizing without them: %v", err)
	}

	home := grocer.Location{Lat: a.cfg.Household.HomeLat, Lon: a.cfg.Household.HomeLon}
	optimized := shopping.Optimize(list.Items, stores, sales, home, a.cfg.Household.WeeklyBudget, time.Now())

	a.recordMetric(ctx, "shop", start, len(list.Items))
	return &optimized, nil
}

// OptimizeRecipeBudget prices one recipe against current store prices and
// suggests substitutions if it exceeds the household's per-serving budget.
func (a *App) OptimizeRecipeBudget(ctx context.Context, recipeID string) (*budget.Result, error) {
	rec, err := a.recipeRepo.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("recipe %q not found", recipeID)
	}

	prices, err := a.grocerClient.FetchPrices()
	if err != nil {
		log.Printf("Warning: failed to fetch prices, using estimates: %v", err)
	}

	servings := a.cfg.Household.ServingsPerMeal
	if servings <= 0 {
		servings = rec.Servings
	}

	result := budget.Optimize(rec.Ingredients, a.cfg.Household.MaxPricePerServing, servings,
		prices, nil, budget.DefaultMinProtein, budget.DefaultMinFiber)
	return &result, nil
}

// ApplyReceipt restocks the pantry from scanned receipt lines.
func (a *App) ApplyReceipt(ctx context.Context, lines []pantry.ReceiptItem) error {
	if len(lines) == 0 {
		return fmt.Errorf("receipt has no lines")
	}
	start := time.Now()
	if err := a.pantryRepo.ApplyReceipt(ctx, lines); err != nil {
		return fmt.Errorf("failed to apply receipt: %w", err)
	}
	a.recordMetric(ctx, "receipt", start, len(lines))
	fmt.Printf("Restocked %d pantry items.\n", len(lines))
	return nil
}

// CleanupMetrics removes metrics older than the given number of days.
func (a *App) CleanupMetrics(ctx context.Context, olderThanDays int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, olderThanDays)
}

func (a *App) recordMetric(ctx context.Context, stage string, start time.Time, count int) {
	err := a.metricsStore.Record(ctx, metrics.RunMetric{
		Stage:      stage,
		DurationMS: time.Since(start).Milliseconds(),
		ItemCount:  count,
	})
	if err != nil {
		log.Printf("Warning: failed to record %s metric: %v", stage, err)
	}
}

// fetchPriceTable flattens store prices into cheapest-per-item, falling back
// to an empty table when the price service is unavailable.
func (a *App) fetchPriceTable() map[string]float64 {
	prices, err := a.grocerClient.FetchPrices()
	if err != nil {
		log.Printf("Warning: failed to fetch prices, using category estimates: %v", err)
		return map[string]float64{}
	}
	return grocer.PriceTable(prices)
}

// weekStart returns the Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func countMeals(days []planner.Day) int {
	count := 0
	for _, day := range days {
		for _, ref := range []*planner.MealRef{day.Breakfast, day.Lunch, day.Dinner} {
			if ref != nil {
				count++
			}
		}
	}
	return count
}

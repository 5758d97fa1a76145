package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"contextchef/internal/app"
	"contextchef/internal/budget"
	"contextchef/internal/clipper"
	"contextchef/internal/config"
	"contextchef/internal/database"
	"contextchef/internal/grocer"
	"contextchef/internal/llm"
	"contextchef/internal/metrics"
	"contextchef/internal/pantry"
	"contextchef/internal/planner"
	"contextchef/internal/recipe"
	"contextchef/internal/shopping"
	"contextchef/internal/storage"
)

// cliUserID identifies plans and lists created from the command line.
const cliUserID = "cli"

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	if closer, ok := geminiClient.(llm.Closer); ok {
		defer closer.Close()
	}

	planArchive, err := storage.NewPlanArchive(cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to initialize plan archive: %v", err)
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	pantryRepo := pantry.NewRepository(db.SQL)
	planRepo := planner.NewRepository(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	grocerClient := grocer.NewClient(cfg)
	recipeClipper := clipper.NewClipper(recipeRepo, geminiClient)

	application := app.NewApp(cfg, grocerClient, recipeClipper, metricsStore, planArchive,
		recipeRepo, pantryRepo, planRepo, shoppingRepo)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		if len(os.Args) < 3 {
			log.Fatal("Usage: contextchef ingest <url>")
		}
		if _, err := application.IngestRecipe(ctx, os.Args[2]); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
	case "plan":
		result, err := application.GeneratePlan(ctx, cliUserID)
		if err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
		printPlan(ctx, recipeRepo, result)
	case "shop":
		optimized, err := application.OptimizeShopping(ctx, cliUserID)
		if err != nil {
			log.Fatalf("Shopping optimization failed: %v", err)
		}
		fmt.Println(shopping.Export(*optimized, exportFormat()))
	case "budget":
		if len(os.Args) < 3 {
			log.Fatal("Usage: contextchef budget <recipe-id>")
		}
		result, err := application.OptimizeRecipeBudget(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Budget optimization failed: %v", err)
		}
		printBudget(result.Ingredients, result.TotalCost, result.MeetsNutritionGoals)
	case "receipt":
		if len(os.Args) < 3 {
			log.Fatal("Usage: contextchef receipt <file.csv>")
		}
		lines, err := readReceipt(os.Args[2])
		if err != nil {
			log.Fatalf("Failed to read receipt: %v", err)
		}
		if err := application.ApplyReceipt(ctx, lines); err != nil {
			log.Fatalf("Receipt failed: %v", err)
		}
	case "pantry":
		items, err := pantryRepo.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list pantry: %v", err)
		}
		for _, item := range items {
			fmt.Printf("%-24s %8.2f %s\n", item.Name, item.Quantity, item.Unit)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func exportFormat() string {
	if format := os.Getenv("EXPORT_FORMAT"); format != "" {
		return format
	}
	return shopping.FormatText
}

func printPlan(ctx context.Context, repo *recipe.Repository, result *planner.Result) {
	dayNames := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

	fmt.Println("\n=== WEEKLY MEAL PLAN ===")
	for i, day := range result.Days {
		name := fmt.Sprintf("Day %d", i+1)
		if i < len(dayNames) {
			name = dayNames[i]
		}
		fmt.Printf("%s\n", name)
		slots := []struct {
			label string
			ref   *planner.MealRef
		}{
			{"Breakfast", day.Breakfast},
			{"Lunch", day.Lunch},
			{"Dinner", day.Dinner},
		}
		for _, slot := range slots {
			if slot.ref == nil {
				continue
			}
			title := slot.ref.RecipeID
			if rec, err := repo.Get(ctx, slot.ref.RecipeID); err == nil && rec != nil {
				title = rec.Title
			}
			fmt.Printf("  %-10s %s (x%d servings)\n", slot.label+":", title, slot.ref.Servings)
		}
	}

	fmt.Printf("\nEstimated cost: $%.2f\n", result.TotalCost)
	fmt.Printf("Avg nutrition/day: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat\n",
		result.AvgNutritionPerDay.Kcal, result.AvgNutritionPerDay.ProteinG,
		result.AvgNutritionPerDay.CarbG, result.AvgNutritionPerDay.FatG)

	if len(result.ShoppingItems) > 0 {
		fmt.Println("\n=== SHOPPING LIST ===")
		for _, item := range result.ShoppingItems {
			fmt.Printf("- %g %s %s ($%.2f)\n", item.Quantity, item.Unit, item.Name, item.EstimatedPrice)
		}
	}
}

func printBudget(ingredients []budget.PricedIngredient, totalCost float64, meetsGoals bool) {
	fmt.Println("\n=== BUDGET BREAKDOWN ===")
	for _, line := range ingredients {
		name := line.Name
		if line.Substituted {
			name = fmt.Sprintf("%s (was %s)", line.Name, line.OriginalName)
		}
		fmt.Printf("%-32s %-10s $%.2f\n", name, line.StoreID, line.Price)
	}
	fmt.Printf("\nTotal: $%.2f (nutrition goals met: %v)\n", totalCost, meetsGoals)
}

// readReceipt parses a CSV of "name,quantity,unit" lines.
func readReceipt(path string) ([]pantry.ReceiptItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var lines []pantry.ReceiptItem
	for i, record := range records {
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected name,quantity,unit", i+1)
		}
		quantity, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad quantity %q", i+1, record[1])
		}
		lines = append(lines, pantry.ReceiptItem{
			Name:     record[0],
			Quantity: quantity,
			Unit:     record[2],
		})
	}
	return lines, nil
}

func printUsage() {
	fmt.Println("Usage: contextchef <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest <url>       Clip a recipe page into the catalog")
	fmt.Println("  plan               Build a weekly meal plan")
	fmt.Println("  shop               Optimize the latest shopping list across stores")
	fmt.Println("  budget <recipe-id> Price a recipe and suggest cheaper substitutions")
	fmt.Println("  receipt <file.csv> Restock the pantry from a receipt (name,quantity,unit)")
	fmt.Println("  pantry             Show current pantry stock")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contextchef/internal/app"
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
	"contextchef/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
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

	bot, err := telegram.NewBot(cfg, application, recipeRepo, pantryRepo, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

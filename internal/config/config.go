package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Household captures the user context threaded into every planning call.
type Household struct {
	DietaryProfile     string
	Allergens          []string
	HomeLat            float64
	HomeLon            float64
	ServingsPerMeal    int
	MaxPricePerServing float64
	WeeklyBudget       float64
}

// Config holds the configuration for the application.
type Config struct {
	GrocerURL        string
	GrocerContentKey string
	GrocerAdminKey   string
	GeminiAPIKey     string

	DatabasePath string
	DataPath     string

	Household Household

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	grocerURL := os.Getenv("GROCER_API_URL")
	if grocerURL == "" {
		return nil, fmt.Errorf("GROCER_API_URL environment variable not set")
	}

	grocerContentKey := os.Getenv("GROCER_CONTENT_API_KEY")
	if grocerContentKey == "" {
		return nil, fmt.Errorf("GROCER_CONTENT_API_KEY environment variable not set")
	}

	grocerAdminKey := os.Getenv("GROCER_ADMIN_API_KEY")
	if grocerAdminKey == "" {
		// Fallback to content key if only one is provided
		grocerAdminKey = grocerContentKey
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/contextchef.db"
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "data"
	}

	// Telegram Config (Optional for CLI, required for Bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		fmt.Sscanf(telegramAllowUserIDStr, "%d", &telegramAllowUserID)
	}

	return &Config{
		GrocerURL:           grocerURL,
		GrocerContentKey:    grocerContentKey,
		GrocerAdminKey:      grocerAdminKey,
		GeminiAPIKey:        geminiAPIKey,
		DatabasePath:        databasePath,
		DataPath:            dataPath,
		Household:           householdFromEnv(),
		TelegramBotToken:    telegramBotToken,
		TelegramWebhookURL:  telegramWebhookURL,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}

// householdFromEnv reads the optional household context, applying sensible
// defaults for anything unset.
func householdFromEnv() Household {
	household := Household{
		DietaryProfile:     envOr("DIETARY_PROFILE", "none"),
		ServingsPerMeal:    envInt("SERVINGS_PER_MEAL", 2),
		MaxPricePerServing: envFloat("MAX_PRICE_PER_SERVING", 8.00),
		WeeklyBudget:       envFloat("WEEKLY_BUDGET", 0),
		HomeLat:            envFloat("HOME_LAT", 0),
		HomeLon:            envFloat("HOME_LON", 0),
	}

	if allergens := os.Getenv("ALLERGENS"); allergens != "" {
		for _, allergen := range strings.Split(allergens, ",") {
			if trimmed := strings.TrimSpace(allergen); trimmed != "" {
				household.Allergens = append(household.Allergens, trimmed)
			}
		}
	}
	return household
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

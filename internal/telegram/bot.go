package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"contextchef/internal/app"
	"contextchef/internal/config"
	"contextchef/internal/metrics"
	"contextchef/internal/pantry"
	"contextchef/internal/planner"
	"contextchef/internal/recipe"
	"contextchef/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Bot wraps the Telegram API around the application use cases.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	recipeRepo   *recipe.Repository
	pantryRepo   *pantry.Repository
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	application *app.App,
	recipeRepo *recipe.Repository,
	pantryRepo *pantry.Repository,
	metricsStore *metrics.Store,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          api,
		app:          application,
		recipeRepo:   recipeRepo,
		pantryRepo:   pantryRepo,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	if b.cfg.TelegramAllowUserID != 0 && update.Message.From.ID != b.cfg.TelegramAllowUserID {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/plan":
		b.handlePlanRequest(msg)
	case text == "/shop":
		b.handleShopRequest(msg)
	case text == "/pantry":
		b.handlePantryRequest(msg)
	case text == "/status":
		b.handleStatusRequest(msg)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleClipRequest(msg)
	default:
		b.send(msg.Chat.ID, "🤖 Send a recipe URL to clip it, or use:\n/plan - build a weekly meal plan\n/shop - optimize the shopping list\n/pantry - show pantry stock\n/status - usage and health report")
	}
}

func (b *Bot) handleClipRequest(msg *tgbotapi.Message) {
	sentMsg, ok := b.sendAndTrack(msg.Chat.ID, "✂️ *Clipping recipe...*")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	rec, err := b.app.IngestRecipe(ctx, msg.Text)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, errorText("Error clipping recipe", err))
		return
	}
	b.edit(msg.Chat.ID, sentMsg.MessageID,
		fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*Time:* %d min\n*Cost:* $%.2f/serving", rec.Title, rec.TotalTimeMinutes(), rec.EstimatedCostPerServing))
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	sentMsg, ok := b.sendAndTrack(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Ranking recipes against your pantry)")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userID := fmt.Sprintf("%d", msg.From.ID)
	result, err := b.app.GeneratePlan(ctx, userID)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, errorText("Error generating plan", err))
		return
	}

	titles := b.recipeTitles(ctx, result)
	planText, shoppingText := formatPlanParts(result, titles)

	b.edit(msg.Chat.ID, sentMsg.MessageID, planText)
	b.send(msg.Chat.ID, shoppingText)
}

func (b *Bot) handleShopRequest(msg *tgbotapi.Message) {
	sentMsg, ok := b.sendAndTrack(msg.Chat.ID, "🛒 *Checking stores and sales...*")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	userID := fmt.Sprintf("%d", msg.From.ID)
	optimized, err := b.app.OptimizeShopping(ctx, userID)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, errorText("Error optimizing shopping", err))
		return
	}

	b.edit(msg.Chat.ID, sentMsg.MessageID,
		fmt.Sprintf("```\n%s\n```", shopping.Export(*optimized, shopping.FormatText)))
}

func (b *Bot) handlePantryRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := b.pantryRepo.List(ctx)
	if err != nil {
		b.send(msg.Chat.ID, errorText("Error reading pantry", err))
		return
	}
	b.send(msg.Chat.ID, formatPantry(items))
}

func (b *Bot) handleStatusRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recent, err := b.metricsStore.ListRecent(ctx, 10)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath, b.cfg.DataPath)
	b.send(msg.Chat.ID, formatStatus(recent, health))
}

// recipeTitles resolves plan recipe ids to titles for display.
func (b *Bot) recipeTitles(ctx context.Context, result *planner.Result) map[string]string {
	titles := map[string]string{}
	for _, day := range result.Days {
		for _, ref := range []*planner.MealRef{day.Breakfast, day.Lunch, day.Dinner} {
			if ref == nil {
				continue
			}
			if _, seen := titles[ref.RecipeID]; seen {
				continue
			}
			rec, err := b.recipeRepo.Get(ctx, ref.RecipeID)
			if err != nil || rec == nil {
				titles[ref.RecipeID] = ref.RecipeID
				continue
			}
			titles[ref.RecipeID] = rec.Title
		}
	}
	return titles
}

func formatPlanParts(result *planner.Result, titles map[string]string) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Weekly Meal Plan*\n\n")

	for i, day := range result.Days {
		name := fmt.Sprintf("Day %d", i+1)
		if i < len(dayNames) {
			name = dayNames[i]
		}
		pb.WriteString(fmt.Sprintf("*%s*\n", name))

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
			title := titles[slot.ref.RecipeID]
			if title == "" {
				title = slot.ref.RecipeID
			}
			pb.WriteString(fmt.Sprintf("  %s: %s\n", slot.label, title))
		}
		pb.WriteString("\n")
	}

	pb.WriteString(fmt.Sprintf("💰 *Est. Cost:* $%.2f\n", result.TotalCost))
	pb.WriteString(fmt.Sprintf("🔥 *Avg/day:* %.0f kcal, %.0fg protein\n",
		result.AvgNutritionPerDay.Kcal, result.AvgNutritionPerDay.ProteinG))

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(result.ShoppingItems) == 0 {
		sb.WriteString("_Pantry covers everything!_\n")
	}
	for _, item := range result.ShoppingItems {
		sb.WriteString(fmt.Sprintf("• %.2g %s %s ($%.2f)\n", item.Quantity, item.Unit, item.Name, item.EstimatedPrice))
	}

	return pb.String(), sb.String()
}

func formatPantry(items []pantry.Item) string {
	var sb strings.Builder
	sb.WriteString("🥫 *Pantry*\n\n")
	if len(items) == 0 {
		sb.WriteString("_Empty. Send a receipt via the CLI to restock._\n")
		return sb.String()
	}
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s: %.2g %s", item.Name, item.Quantity, item.Unit))
		if item.ExpiresOn != "" {
			sb.WriteString(fmt.Sprintf(" (expires %s)", item.ExpiresOn))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatStatus(recent []metrics.RunMetric, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Runs*\n")
	if len(recent) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, m := range recent {
		sb.WriteString(fmt.Sprintf("• *%s*: %dms (%d items)\n", m.Stage, m.DurationMS, m.ItemCount))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• DB: %s, Data: %s\n", health.DBSize, health.DataSize))

	return sb.String()
}

func errorText(prefix string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%v\n```", prefix, safeErr)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) sendAndTrack(chatID int64, text string) (tgbotapi.Message, bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return tgbotapi.Message{}, false
	}
	return sent, true
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

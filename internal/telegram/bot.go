// Package telegram is a companion bot that shows linked users their day,
// their groceries and lets them swap meals from the chat.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"yourkitchen/internal/config"
	"yourkitchen/internal/domain"
	"yourkitchen/internal/metrics"
	"yourkitchen/internal/shopping"
	"yourkitchen/internal/view"
)

const (
	defaultWebhookPath = "/webhook"
	// processTimeout bounds one update, including a swap or clip model call.
	processTimeout = 2 * time.Minute
	usageDays      = 7
)

// API is the part of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Kitchen is the application the bot drives.
type Kitchen interface {
	Dashboard(ctx context.Context, profileID string, dayIndex int) (*view.Dashboard, error)
	CategorizeGroceries(ctx context.Context, profileID string) ([]shopping.CategoryGroup, error)
	SwapMeal(ctx context.Context, profileID string, dayIndex int, mealID, reason string) (*domain.UserProfile, *domain.PlannedMeal, error)
	ClipRecipe(ctx context.Context, profileID, url string) (*domain.UserProfile, *domain.Recipe, error)
}

// UsageReporter reads the recorded model usage.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot wraps the Telegram API and the kitchen.
type Bot struct {
	api     API
	kitchen Kitchen
	usage   UsageReporter
	links   map[int64]string
	adminID int64
	dataDir string
	path    string
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, kitchen Kitchen, usage UsageReporter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	b := newBot(api, kitchen, usage, cfg.TelegramProfileLinks, cfg.AdminTelegramID, cfg.DataDir)
	b.path = webhookPath(cfg.TelegramWebhookURL)
	return b, nil
}

func newBot(api API, kitchen Kitchen, usage UsageReporter, links map[int64]string, adminID int64, dataDir string) *Bot {
	if links == nil {
		links = map[int64]string{}
	}
	return &Bot{
		api:     api,
		kitchen: kitchen,
		usage:   usage,
		links:   links,
		adminID: adminID,
		dataDir: dataDir,
		path:    defaultWebhookPath,
	}
}

// Path is where the webhook handler must be mounted.
func (b *Bot) Path() string { return b.path }

// Handler returns the webhook handler.
func (b *Bot) Handler() http.Handler {
	return http.HandlerFunc(b.handleWebhook)
}

func webhookPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return defaultWebhookPath
	}
	return u.Path
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if _, ok := b.links[msg.From.ID]; !ok {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", msg.From.ID, msg.From.UserName)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		b.processMessage(ctx, msg)
	}()
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	profileID, ok := b.links[msg.From.ID]
	if !ok {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.reply(msg.Chat.ID, b.clip(ctx, profileID, text))
		return
	}

	command, args := parseCommand(text)
	switch command {
	case "/today":
		b.reply(msg.Chat.ID, b.today(ctx, profileID))
	case "/groceries":
		b.reply(msg.Chat.ID, b.groceries(ctx, profileID))
	case "/swap":
		b.reply(msg.Chat.ID, b.swap(ctx, profileID, args))
	case "/metrics":
		if msg.From.ID != b.adminID {
			b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.reply(msg.Chat.ID, b.metrics(ctx))
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

const helpText = "🧑‍🍳 *Your Kitchen*\n\n" +
	"/today: today's meals\n" +
	"/groceries: your shopping list by aisle\n" +
	"/swap <n> [reason]: swap the n-th meal of today\n" +
	"Send a recipe link to save it to your cookbook."

// parseCommand splits "/swap@KitchenBot 2 too heavy" into "/swap" and
// "2 too heavy".
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return strings.ToLower(command), strings.TrimSpace(args)
}

func (b *Bot) today(ctx context.Context, profileID string) string {
	d, err := b.kitchen.Dashboard(ctx, profileID, -1)
	if err != nil {
		return failure("loading today's meals", err)
	}
	return formatToday(d)
}

func (b *Bot) groceries(ctx context.Context, profileID string) string {
	groups, err := b.kitchen.CategorizeGroceries(ctx, profileID)
	if err != nil {
		return failure("loading groceries", err)
	}
	return formatGroceries(groups)
}

func (b *Bot) swap(ctx context.Context, profileID, args string) string {
	rawN, reason, _ := strings.Cut(args, " ")
	n, err := strconv.Atoi(rawN)
	if err != nil || n < 1 {
		return "Usage: /swap <n> [reason], where n is the meal number shown by /today."
	}

	d, err := b.kitchen.Dashboard(ctx, profileID, -1)
	if err != nil {
		return failure("loading today's meals", err)
	}
	meals := orderedMeals(d.Meals)
	if n > len(meals) {
		return fmt.Sprintf("There is no meal %d today.", n)
	}

	original := meals[n-1]
	_, replacement, err := b.kitchen.SwapMeal(ctx, profileID, d.SelectedDay, original.ID, strings.TrimSpace(reason))
	if err != nil {
		return failure("swapping "+original.Name, err)
	}
	return fmt.Sprintf("🔄 *%s* is now *%s* (%s)",
		escape(original.Name), escape(replacement.Name), escape(replacement.TimeEstimate))
}

func (b *Bot) clip(ctx context.Context, profileID, link string) string {
	_, r, err := b.kitchen.ClipRecipe(ctx, profileID, link)
	if err != nil {
		return failure("clipping recipe", err)
	}
	return fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*Timing:* %s", escape(r.Name), escape(r.Timing))
}

func (b *Bot) metrics(ctx context.Context) string {
	usage, err := b.usage.GetDailyUsage(ctx, usageDays)
	if err != nil {
		log.Printf("Failed to fetch usage for the bot: %v", err)
		return "❌ Error fetching metrics."
	}
	return formatMetrics(usage, metrics.GetSysHealth(b.dataDir))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send reply to %d: %v", chatID, err)
	}
}

// Notify sends text to the admin, if one is configured.
func (b *Bot) Notify(text string) {
	if b.adminID == 0 {
		return
	}
	b.reply(b.adminID, text)
}

func failure(what string, err error) string {
	log.Printf("Error %s: %v", what, err)
	return fmt.Sprintf("❌ *Error %s:* %s", escape(what), escape(err.Error()))
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// orderedMeals lists the meals of a day in card order.
func orderedMeals(cards view.MealCards) []domain.PlannedMeal {
	var out []domain.PlannedMeal
	for _, m := range []*domain.PlannedMeal{cards.Breakfast, cards.Lunch, cards.Dinner} {
		if m != nil {
			out = append(out, *m)
		}
	}
	return append(out, cards.Others...)
}

func formatToday(d *view.Dashboard) string {
	var sb strings.Builder
	day := ""
	for _, tab := range d.Days {
		if tab.Selected {
			day = tab.Day
		}
	}
	sb.WriteString(fmt.Sprintf("📅 *%s*: %s\n\n", escape(d.Title), escape(day)))

	meals := orderedMeals(d.Meals)
	if len(meals) == 0 {
		sb.WriteString("_No meals planned today_\n")
	}
	for i, m := range meals {
		sb.WriteString(fmt.Sprintf("%d. *%s*: %s", i+1, escape(m.Type), escape(m.Name)))
		if m.TimeEstimate != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", escape(m.TimeEstimate)))
		}
		sb.WriteString("\n")
	}
	if d.PrepMinutes > 0 {
		sb.WriteString(fmt.Sprintf("\n⏱ *Total Prep:* %s\n", d.PrepTotal))
	}
	return sb.String()
}

func formatGroceries(groups []shopping.CategoryGroup) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")
	if len(groups) == 0 {
		sb.WriteString("\n_Nothing to buy_\n")
	}
	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", escape(string(g.Category))))
		for _, e := range g.Items {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(e.Name)))
		}
	}
	return sb.String()
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize))
	return sb.String()
}

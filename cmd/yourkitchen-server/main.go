package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yourkitchen/internal/app"
	"yourkitchen/internal/auth"
	"yourkitchen/internal/chef"
	"yourkitchen/internal/clipper"
	"yourkitchen/internal/config"
	"yourkitchen/internal/database"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/metrics"
	"yourkitchen/internal/planner"
	"yourkitchen/internal/profile"
	"yourkitchen/internal/shopping"
	"yourkitchen/internal/telegram"
	"yourkitchen/internal/web"
)

func main() {
	// 1. Load Configuration
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid server config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure (LLMs)
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	var textGen llm.TextGenerator = geminiClient
	if cfg.LLMProvider == config.ProviderGroq {
		textGen = llm.NewGroqClient(cfg)
	}
	geminiREST := llm.NewGeminiREST(cfg)

	// 3. Storage
	db, err := database.Open(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	profileStore, err := profile.OpenStore(cfg.ProfileStore, cfg.LocalStoreDir, db)
	if err != nil {
		log.Fatalf("Failed to initialize profile store: %v", err)
	}
	metricsStore := metrics.NewStore(db)

	// 4. Initialize Services
	application := app.New(app.Services{
		Profiles:  profile.NewAdapter(profileStore),
		Planner:   planner.NewPlanner(textGen),
		Groceries: shopping.NewCache(shopping.NewCategorizer(textGen)),
		Chef:      chef.NewChef(llm.NewChatRouter(geminiClient, geminiREST), textGen, geminiREST),
		Clipper:   clipper.NewClipper(textGen),
		Metrics:   metricsStore,
	})
	authSvc := auth.NewService(auth.NewUserStore(db), auth.NewRevocationStore(db), cfg.SessionSecret)

	server := web.New(application, authSvc, metricsStore, web.Options{
		WebDir:        cfg.WebDir,
		DataDir:       cfg.DataDir,
		IsAdmin:       cfg.IsAdmin,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.SecureCookies,
	})

	// 5. Optional Telegram companion bot
	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		bot, err = telegram.NewBot(cfg, application, metricsStore)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		server.Handle(bot.Path(), bot.Handler())
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Kitchen server listening on %s (profiles: %s)", cfg.Addr, cfg.ProfileStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	if bot != nil {
		bot.Notify("🟢 Kitchen server started")
	}

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

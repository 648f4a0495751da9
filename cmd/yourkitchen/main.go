package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"yourkitchen/internal/app"
	"yourkitchen/internal/config"
	"yourkitchen/internal/database"
	"yourkitchen/internal/domain"
	"yourkitchen/internal/llm"
	"yourkitchen/internal/metrics"
	"yourkitchen/internal/planner"
	"yourkitchen/internal/profile"
	"yourkitchen/internal/questionnaire"
	"yourkitchen/internal/shopping"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "questions":
		printQuestions()
	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		answersPath := planCmd.String("answers", "answers.yaml", "YAML file with the onboarding answers")
		profileID := planCmd.String("profile", "", "Store the plan on this profile")
		name := planCmd.String("name", "", "Profile name when a new profile is created")
		planCmd.Parse(os.Args[2:])

		if err := runPlan(ctx, *answersPath, *profileID, *name); err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
	case "migrate":
		cfg := mustConfig()
		db := mustDB(cfg)
		defer db.Close()
		fmt.Printf("Database migrated (%s).\n", db.Dialect)
	case "metrics":
		metricsCmd := flag.NewFlagSet("metrics", flag.ExitOnError)
		days := metricsCmd.Int("days", 7, "Report the last N days")
		metricsCmd.Parse(os.Args[2:])

		cfg := mustConfig()
		db := mustDB(cfg)
		defer db.Close()

		usage, err := metrics.NewStore(db).GetDailyUsage(ctx, *days)
		if err != nil {
			log.Fatalf("Failed to read usage: %v", err)
		}
		printUsageReport(usage, metrics.GetSysHealth(cfg.DataDir))
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		cfg := mustConfig()
		db := mustDB(cfg)
		defer db.Close()

		affected, err := metrics.NewStore(db).Cleanup(ctx, *days)
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

func printUsage() {
	fmt.Println("Usage: yourkitchen <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  questions          Print the onboarding questionnaire")
	fmt.Println("  plan               Generate a weekly plan from an answers file")
	fmt.Println("  migrate            Apply database migrations")
	fmt.Println("  metrics            Show model usage and system health")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}

func mustConfig() *config.Config {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func mustDB(cfg *config.Config) *database.DB {
	db, err := database.Open(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return db
}

func printQuestions() {
	for _, q := range questionnaire.Questions() {
		fmt.Printf("%d. %s\n", q.ID, q.Text)
		if q.HelperText != "" {
			fmt.Printf("   %s\n", q.HelperText)
		}
		switch {
		case q.IsText():
			fmt.Printf("   (free text, e.g. %s)\n", q.Placeholder)
		case q.AllowMultiple:
			fmt.Printf("   Pick any: %s\n", strings.Join(q.Options, " | "))
		default:
			fmt.Printf("   Pick one: %s\n", strings.Join(q.Options, " | "))
		}
	}
}

// runPlan prints a generated plan as JSON. With a profile id the plan goes
// through onboarding and is stored on that profile.
func runPlan(ctx context.Context, answersPath, profileID, name string) error {
	raw, err := questionnaire.LoadAnswersFile(answersPath)
	if err != nil {
		return err
	}

	cfg := mustConfig()
	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	defer geminiClient.Close()

	var textGen llm.TextGenerator = geminiClient
	if cfg.LLMProvider == config.ProviderGroq {
		textGen = llm.NewGroqClient(cfg)
	}

	db := mustDB(cfg)
	defer db.Close()
	metricsStore := metrics.NewStore(db)

	var plan *domain.WeeklyPlan
	if profileID == "" {
		answers, err := questionnaire.Collect(raw)
		if err != nil {
			return err
		}
		generated, meta, err := planner.NewPlanner(textGen).GeneratePlan(ctx, answers)
		if recErr := metricsStore.RecordMeta(ctx, meta); recErr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, recErr)
		}
		if err != nil {
			return err
		}
		plan = generated
	} else {
		store, err := profile.OpenStore(cfg.ProfileStore, cfg.LocalStoreDir, db)
		if err != nil {
			return err
		}
		application := app.New(app.Services{
			Profiles:  profile.NewAdapter(store),
			Planner:   planner.NewPlanner(textGen),
			Groceries: shopping.NewCache(shopping.NewCategorizer(textGen)),
			Metrics:   metricsStore,
		})
		p, err := application.CompleteOnboarding(ctx, profileID, name, raw)
		if err != nil {
			return err
		}
		plan = p.WeeklyPlan
		log.Printf("Stored plan %q on profile %s", plan.Title, profileID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func printUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) {
	fmt.Println("Recent LLM activity:")
	if len(usage) == 0 {
		fmt.Println("  no data yet")
	}
	for _, d := range usage {
		fmt.Printf("  %s: %d prompt + %d completion tokens (%d execs)\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
	}
	fmt.Println("\nSystem health:")
	fmt.Printf("  RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Printf("  Goroutines: %d\n", health.Goroutines)
	fmt.Printf("  Data (%s): %s\n", health.DataDir, health.DataSize)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Profile store backends.
const (
	StoreLocal = "local"
	StoreSQL   = "sql"
)

// LLM providers for structured text generation.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiChatModel  string
	GeminiImageModel string
	GroqAPIKey       string
	LLMProvider      string

	// Storage
	DatabaseURL   string
	DatabasePath  string
	ProfileStore  string
	LocalStoreDir string
	DataDir       string

	// HTTP server
	Addr          string
	WebDir        string
	SessionSecret string
	AdminEmails   []string
	CORSOrigin    string
	SecureCookies bool

	// Telegram Config
	TelegramBotToken     string
	TelegramWebhookURL   string
	TelegramProfileLinks map[int64]string
	AdminTelegramID      int64
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Missing files are ignored and variables already
// set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderGroq, provider)
	}

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if provider == ProviderGroq && groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	defaultStore := StoreLocal
	if databaseURL != "" {
		defaultStore = StoreSQL
	}
	profileStore := strings.ToLower(getEnv("PROFILE_STORE", defaultStore))
	if profileStore != StoreLocal && profileStore != StoreSQL {
		return nil, fmt.Errorf("PROFILE_STORE must be %q or %q, got %q", StoreLocal, StoreSQL, profileStore)
	}

	links, err := parseProfileLinks(os.Getenv("TELEGRAM_PROFILE_LINKS"))
	if err != nil {
		return nil, err
	}

	var adminTelegramID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		adminTelegramID, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID must be a number: %w", err)
		}
	}

	var secureCookies bool
	if s := os.Getenv("SECURE_COOKIES"); s != "" {
		secureCookies, err = strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("SECURE_COOKIES must be a boolean: %w", err)
		}
	}

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		GeminiAPIKey:         geminiAPIKey,
		GeminiTextModel:      getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiChatModel:      getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-pro"),
		GeminiImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-3-pro-image-preview"),
		GroqAPIKey:           groqAPIKey,
		LLMProvider:          provider,
		DatabaseURL:          databaseURL,
		DatabasePath:         getEnv("DATABASE_PATH", dataDir+"/yourkitchen.db"),
		ProfileStore:         profileStore,
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", dataDir),
		DataDir:              dataDir,
		Addr:                 getEnv("ADDR", ":8080"),
		WebDir:               getEnv("WEB_DIR", "web"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		AdminEmails:          splitList(os.Getenv("ADMIN_EMAILS")),
		CORSOrigin:           os.Getenv("CORS_ORIGIN"),
		SecureCookies:        secureCookies,
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:   os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramProfileLinks: links,
		AdminTelegramID:      adminTelegramID,
	}, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable not set")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	if c.TelegramBotToken != "" && c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// IsAdmin reports whether email belongs to an administrator.
func (c *Config) IsAdmin(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseProfileLinks reads "telegramID:profileID" pairs separated by commas.
func parseProfileLinks(s string) (map[int64]string, error) {
	links := make(map[int64]string)
	for _, pair := range splitList(s) {
		idStr, profileID, ok := strings.Cut(pair, ":")
		if !ok || profileID == "" {
			return nil, fmt.Errorf("TELEGRAM_PROFILE_LINKS entry %q must be telegramID:profileID", pair)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_PROFILE_LINKS entry %q has an invalid telegram id: %w", pair, err)
		}
		links[id] = strings.TrimSpace(profileID)
	}
	return links, nil
}

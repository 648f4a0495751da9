package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("DATABASE_URL", "")
		setEnv("PROFILE_STORE", "")
		setEnv("LLM_PROVIDER", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.ProfileStore != StoreLocal {
			t.Errorf("Expected local profile store by default, got '%s'", cfg.ProfileStore)
		}
		if cfg.LLMProvider != ProviderGemini {
			t.Errorf("Expected gemini provider by default, got '%s'", cfg.LLMProvider)
		}
		if cfg.Addr != ":8080" {
			t.Errorf("Expected Addr ':8080', got '%s'", cfg.Addr)
		}
	})

	t.Run("DatabaseURLSelectsSQLStore", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("DATABASE_URL", "postgres://localhost/kitchen")
		setEnv("PROFILE_STORE", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.ProfileStore != StoreSQL {
			t.Errorf("Expected sql profile store, got '%s'", cfg.ProfileStore)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "")
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("GroqProviderNeedsKey", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("LLM_PROVIDER", "groq")
		setEnv("GROQ_API_KEY", "")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GROQ_API_KEY, got nil")
		}
		expectedError := "GROQ_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidProfileStore", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("LLM_PROVIDER", "")
		setEnv("PROFILE_STORE", "redis")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for an unknown PROFILE_STORE")
		}
	})

	t.Run("TelegramProfileLinks", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("PROFILE_STORE", "")
		setEnv("TELEGRAM_PROFILE_LINKS", "123:alice, 456:bob")
		setEnv("ADMIN_TELEGRAM_ID", "123")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.TelegramProfileLinks[123] != "alice" || cfg.TelegramProfileLinks[456] != "bob" {
			t.Errorf("Unexpected links %v", cfg.TelegramProfileLinks)
		}
		if cfg.AdminTelegramID != 123 {
			t.Errorf("Expected AdminTelegramID 123, got %d", cfg.AdminTelegramID)
		}

		setEnv("TELEGRAM_PROFILE_LINKS", "not-a-pair")
		if _, err := NewFromEnv(); err == nil {
			t.Error("Expected an error for a malformed link")
		}
	})

	t.Run("SecureCookies", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("PROFILE_STORE", "")
		setEnv("SECURE_COOKIES", "true")
		setEnv("CORS_ORIGIN", "http://localhost:5173")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !cfg.SecureCookies || cfg.CORSOrigin != "http://localhost:5173" {
			t.Errorf("Unexpected cookie settings %+v", cfg)
		}

		setEnv("SECURE_COOKIES", "sometimes")
		if _, err := NewFromEnv(); err == nil {
			t.Error("Expected an error for a non-boolean SECURE_COOKIES")
		}
	})
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("Expected an error without SESSION_SECRET")
	}

	cfg.SessionSecret = "short"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("Expected an error for a short secret")
	}

	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	cfg.TelegramBotToken = "token"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("Expected an error for a bot token without webhook URL")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("YK_DOTENV_TEST=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YK_DOTENV_TEST", "")
	os.Unsetenv("YK_DOTENV_TEST")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("YK_DOTENV_TEST"); got != "from-file" {
		t.Errorf("Expected 'from-file', got '%s'", got)
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"Chef@Example.com"}}
	if !cfg.IsAdmin("chef@example.com") {
		t.Error("Expected case-insensitive admin match")
	}
	if cfg.IsAdmin("cook@example.com") {
		t.Error("Expected non-admin")
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Text generation backends understood by llm.NewTextGenerator.
const (
	BackendOllama = "ollama"
	BackendGroq   = "groq"
	BackendGemini = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	TextBackend       string
	TextModel         string
	OllamaURL         string
	GroqAPIKey        string
	GeminiAPIKey      string
	GenerationTimeout time.Duration

	GeoNamesUsername string
	GeoNamesURL      string
	OverpassURL      string
	OpenRouteAPIKey  string
	OpenRouteURL     string
	GuideBaseURL     string

	DatabasePath string
	ExportPath   string
	LogFormat    string

	// Ghost publishing (optional)
	GhostURL      string
	GhostAdminKey string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
	Port                   string
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	backend := strings.ToLower(getEnv("TEXT_BACKEND", BackendOllama))

	cfg := &Config{
		TextBackend:      backend,
		TextModel:        os.Getenv("TEXT_MODEL"),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434/v1"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeoNamesUsername: os.Getenv("GEONAMES_USERNAME"),
		GeoNamesURL:      getEnv("GEONAMES_URL", "http://api.geonames.org"),
		OverpassURL:      getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OpenRouteAPIKey:  os.Getenv("OPENROUTE_API_KEY"),
		OpenRouteURL:     getEnv("OPENROUTE_URL", "https://api.openrouteservice.org"),
		GuideBaseURL:     os.Getenv("GUIDE_BASE_URL"),
		DatabasePath:     getEnv("DATABASE_PATH", "data/travel.db"),
		ExportPath:       getEnv("EXPORT_PATH", "data/exports"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		GhostURL:         os.Getenv("GHOST_API_URL"),
		GhostAdminKey:    os.Getenv("GHOST_ADMIN_API_KEY"),

		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		Port:               getEnv("PORT", "8080"),
	}

	switch backend {
	case BackendOllama:
	case BackendGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	case BackendGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported TEXT_BACKEND %q", backend)
	}

	if cfg.GeoNamesUsername == "" {
		return nil, fmt.Errorf("GEONAMES_USERNAME environment variable not set")
	}

	timeout, err := time.ParseDuration(getEnv("GENERATION_TIMEOUT", "90s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
	}
	cfg.GenerationTimeout = timeout

	ids, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}
	cfg.TelegramAllowedUserIDs = ids

	if admin := os.Getenv("ADMIN_TELEGRAM_ID"); admin != "" {
		id, err := strconv.ParseInt(admin, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// GhostEnabled reports whether publishing to Ghost is configured.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	BGG      BGGConfig
	OpenAI   OpenAIConfig
	Research ResearchConfig
	OTEL     OTELConfig
	Env      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// BGGConfig holds configuration for the external game metadata client
type BGGConfig struct {
	BaseURL        string
	SearchTimeout  time.Duration
	MinCallSpacing time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// ResearchConfig holds configuration for the research orchestration layer
type ResearchConfig struct {
	MaxPerWindow     int
	Window           time.Duration
	CacheTTL         time.Duration
	CacheSize        int
	ScoreThreshold   int
	MaxSources       int
	TranslationsPath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		BGG: BGGConfig{
			BaseURL:        getEnv("BGG_BASE_URL", "https://boardgamegeek.com/xmlapi2"),
			SearchTimeout:  getEnvAsDuration("BGG_SEARCH_TIMEOUT", 8*time.Second),
			MinCallSpacing: getEnvAsDuration("BGG_MIN_CALL_SPACING", time.Second),
			MaxRetries:     getEnvAsInt("BGG_MAX_RETRIES", 3),
			RetryBaseDelay: getEnvAsDuration("BGG_RETRY_BASE_DELAY", time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Research: ResearchConfig{
			MaxPerWindow:     getEnvAsInt("RESEARCH_MAX_PER_WINDOW", 5),
			Window:           getEnvAsDuration("RESEARCH_WINDOW", time.Hour),
			CacheTTL:         getEnvAsDuration("RESEARCH_CACHE_TTL", 24*time.Hour),
			CacheSize:        getEnvAsInt("RESEARCH_CACHE_SIZE", 512),
			ScoreThreshold:   getEnvAsInt("RESEARCH_SCORE_THRESHOLD", 50),
			MaxSources:       getEnvAsInt("RESEARCH_MAX_SOURCES", 5),
			TranslationsPath: getEnv("RESEARCH_TRANSLATIONS_PATH", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "boardgame-rules-assistant"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

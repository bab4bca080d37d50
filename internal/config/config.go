package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Chat       ChatConfig
	LLM        LLMConfig
	Redis      RedisConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds the property store connection settings
type PostgreSQLConfig struct {
	DSN                string // full connection string, wins over the discrete fields
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// MaxChatTurns caps the model turns of one chat request
const MaxChatTurns = 5

// ChatConfig bounds a single chat request
type ChatConfig struct {
	Timeout      time.Duration
	MaxTurns     int
	ResultLimit  int
	SystemPrompt string // empty means the built-in advisor prompt
}

// LLMConfig selects and configures the generation provider
type LLMConfig struct {
	Provider    string // "openai" (native client) or "langchain"
	Backend     string // langchain backend: "openai" or "anthropic"
	APIKey      string
	APIBase     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	ExtraBody   string // JSON object merged into every chat completion body
	Timeout     int    // seconds, per HTTP call
	Enabled     bool
}

// RedisConfig configures the optional search result cache
type RedisConfig struct {
	Addr     string // empty disables the cache
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "inmobiliaria"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout: getEnvAsSeconds("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Chat: ChatConfig{
			Timeout:      getEnvAsSeconds("CHAT_TIMEOUT", 55*time.Second),
			MaxTurns:     getEnvAsInt("CHAT_MAX_TURNS", 5),
			ResultLimit:  getEnvAsInt("SEARCH_RESULT_LIMIT", 5),
			SystemPrompt: getEnv("CHAT_SYSTEM_PROMPT", ""),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			Backend:     getEnv("LLM_BACKEND", "openai"),
			APIKey:      getEnv("OPENAI_API_KEY", getEnv("LLM_API_KEY", "")),
			APIBase:     getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.4),
			TopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0),
			MaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			ExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:     getEnvAsInt("OPENAI_TIMEOUT", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsSeconds("SEARCH_CACHE_TTL", 60*time.Second),
			Prefix:   getEnv("SEARCH_CACHE_PREFIX", "propchat:search"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.LLM.Enabled = cfg.LLM.APIKey != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the chat pipeline cannot run with
func (c *Config) Validate() error {
	if c.Chat.Timeout <= 0 {
		return fmt.Errorf("CHAT_TIMEOUT must be positive, got %s", c.Chat.Timeout)
	}
	if c.Chat.MaxTurns < 1 || c.Chat.MaxTurns > MaxChatTurns {
		return fmt.Errorf("CHAT_MAX_TURNS must be between 1 and %d, got %d", MaxChatTurns, c.Chat.MaxTurns)
	}
	if c.Chat.ResultLimit < 1 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT must be at least 1, got %d", c.Chat.ResultLimit)
	}
	switch c.LLM.Provider {
	case "openai":
	case "langchain":
		if c.LLM.Backend != "openai" && c.LLM.Backend != "anthropic" {
			return fmt.Errorf("LLM_BACKEND must be openai or anthropic, got %q", c.LLM.Backend)
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or langchain, got %q", c.LLM.Provider)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid float value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsSeconds accepts either a bare number of seconds or a Go duration ("55s", "1m")
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	GRPCPort       string // "" disables the gRPC health server
	AllowedOrigins []string
	LogLevel       string

	LLM          LLMConfig
	Storage      StorageConfig
	Notification NotificationConfig

	VocabularyFile  string
	ConversationLog ConversationLogConfig
	Timeout         TimeoutConfig
}

// LLMConfig selects and parameterizes the language model.
type LLMConfig struct {
	Provider        string
	Model           string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string
}

// APIKey returns the key for the configured provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "google":
		return c.GoogleAPIKey
	case "mock":
		return ""
	default:
		return c.OpenAIAPIKey
	}
}

// StorageConfig selects where conversations and analyses live.
type StorageConfig struct {
	DBPath          string // "" disables SQLite
	SupabaseURL     string
	SupabaseKey     string
	RedisAddr       string // "" keeps conversations in memory
	RedisPassword   string
	RedisDB         int
	ConversationTTL time.Duration
}

// NotificationConfig controls analysis delivery.
type NotificationConfig struct {
	WebhookURL       string
	WebhookTimeout   time.Duration
	RedisStreamAddr  string // "" disables stream publishing
	RedisStreamTopic string
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// TimeoutConfig holds server timeouts.
type TimeoutConfig struct {
	HealthCheck time.Duration
	Shutdown    time.Duration
	Read        time.Duration
	Idle        time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8000"),
		GRPCPort:       getEnv("GRPC_PORT", ""),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Model:           getEnv("LLM_MODEL", ""),
			Temperature:     getEnvFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:       getEnvInt("LLM_MAX_TOKENS", 512),
			Timeout:         getEnvDuration("LLM_TIMEOUT", 30*time.Second),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		},
		Storage: StorageConfig{
			DBPath:          getEnv("DB_PATH", ""),
			SupabaseURL:     getEnv("SUPABASE_URL", ""),
			SupabaseKey:     getEnv("SUPABASE_KEY", ""),
			RedisAddr:       getEnv("REDIS_ADDR", ""),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvInt("REDIS_DB", 0),
			ConversationTTL: getEnvDuration("CONVERSATION_TTL", 24*time.Hour),
		},
		Notification: NotificationConfig{
			WebhookURL:       getEnv("WEBHOOK_URL", ""),
			WebhookTimeout:   getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
			RedisStreamAddr:  getEnv("REDIS_STREAM_ADDR", ""),
			RedisStreamTopic: getEnv("REDIS_STREAM_TOPIC", "job_analyses"),
		},
		VocabularyFile: getEnv("VOCABULARY_FILE", ""),
		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", false),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CONVERSATION_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
			QueueSize:     queueSize,
		},
		Timeout: TimeoutConfig{
			HealthCheck: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
			Shutdown:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			Read:        getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			Idle:        getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.GRPCPort != "" && c.GRPCPort == c.Port {
		return fmt.Errorf("GRPC_PORT must differ from PORT")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "google", "mock":
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be > 0")
	}
	if c.Notification.RedisStreamAddr != "" && c.Notification.RedisStreamTopic == "" {
		return fmt.Errorf("REDIS_STREAM_TOPIC cannot be empty when REDIS_STREAM_ADDR is set")
	}
	if c.ConversationLog.Enabled {
		if c.ConversationLog.Dir == "" {
			return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
		}
		if c.ConversationLog.GlobalEnabled && c.ConversationLog.GlobalPath == "" {
			return fmt.Errorf("CONVERSATION_LOG_GLOBAL_PATH cannot be empty")
		}
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// splitOrigins splits a comma-separated origin list, dropping blanks and
// trailing slashes.
func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimSuffix(part, "/"))
		}
	}
	return out
}

// Package config provides configuration for the case history server.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Upstream AI provider (OpenAI-compatible)
	AIBaseURL    string
	AIAPIKey     string
	AIModel      string
	AITimeout    time.Duration
	AIMaxRetries int

	// Logging
	LogLevel string
}

// Load reads configuration from the environment, with an optional .env
// file for local development.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_PORT", 3001)
	v.SetDefault("DATABASE_URL", "file:medhistory.db?cache=shared&mode=rwc")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("AI_BASE_URL", "https://api.groq.com/openai")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("AI_TIMEOUT_MS", 60000)
	v.SetDefault("AI_MAX_RETRIES", 3)
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		HTTPPort:     v.GetInt("HTTP_PORT"),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		TokenTTL:     time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		AIBaseURL:    v.GetString("AI_BASE_URL"),
		AIAPIKey:     v.GetString("AI_API_KEY"),
		AIModel:      v.GetString("AI_MODEL"),
		AITimeout:    time.Duration(v.GetInt("AI_TIMEOUT_MS")) * time.Millisecond,
		AIMaxRetries: v.GetInt("AI_MAX_RETRIES"),
		LogLevel:     v.GetString("LOG_LEVEL"),
	}
}

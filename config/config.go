package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every environment-driven value the server needs.
type Config struct {
	// Port is the port the HTTP/websocket server listens on.
	Port string

	// DataFile is the path of the JSON snapshot the store loads at boot
	// and rewrites on a timer.
	DataFile string

	// JWTKey signs resume tokens. Must be set in production.
	JWTKey string

	// AllowedOrigins is the list of origins permitted to connect.
	// Empty means allow all (local development).
	AllowedOrigins []string

	// LogLevel is a zerolog level string (debug, info, warn, error).
	LogLevel string

	// GinMode is passed to gin.SetMode when non-empty.
	GinMode string
}

// Load reads a .env file if present, then the environment, falling back to
// development defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		DataFile: getEnv("DATA_FILE", "cold_room_data.json"),
		JWTKey:   getEnv("JWT_KEY", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		GinMode:  getEnv("GIN_MODE", ""),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(o))
		}
	}

	if cfg.JWTKey == "" {
		log.Warn().Msg("JWT_KEY is not set, resume tokens will not survive restarts")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

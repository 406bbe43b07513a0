package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Chat     ChatConfig
	Logging  LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// DatabaseConfig describes the optional Postgres backing store. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	DSN string
}

// AuthConfig holds token-signing settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// ChatConfig tunes the websocket chat endpoint.
type ChatConfig struct {
	// SendBuffer is the per-connection outbound queue depth; frames beyond
	// it are dropped.
	SendBuffer int
	// ReadLimit caps an inbound frame's size in bytes. Zero means no cap.
	ReadLimit int64
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultJWTSecret       = "business-nexus-secret-key"
	defaultTokenTTL        = 24 * time.Hour
	defaultChatSendBuffer  = 32
	defaultChatReadLimit   = 16 << 10
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:       defaultReadTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: valueOrDefault("JWT_SECRET", defaultJWTSecret),
			TokenTTL:  defaultTokenTTL,
		},
		Chat: ChatConfig{
			SendBuffer: parseIntWithDefault("CHAT_SEND_BUFFER", defaultChatSendBuffer),
			ReadLimit:  int64(parseIntWithDefault("CHAT_READ_LIMIT", defaultChatReadLimit)),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	if d, err := parseDuration("SERVER_READ_TIMEOUT"); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.HTTP.ReadTimeout = d
	}
	if d, err := parseDuration("SERVER_IDLE_TIMEOUT"); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.HTTP.IdleTimeout = d
	}
	if d, err := parseDuration("SERVER_SHUTDOWN_TIMEOUT"); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.HTTP.ShutdownTimeout = d
	}
	if d, err := parseDuration("AUTH_TOKEN_TTL"); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.Auth.TokenTTL = d
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Services ServicesConfig
	Storage  StorageConfig
	Session  SessionConfig
	Redis    RedisConfig
	UI       UIConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Env  string `validate:"required"`
}

// ServicesConfig holds the addresses of the remote collaborators. They used
// to be literals in the page code.
type ServicesConfig struct {
	MatchURL   string        `validate:"required,url"`
	EnhanceURL string        `validate:"required,url"`
	BuilderURL string        `validate:"required,url"`
	Timeout    time.Duration `validate:"gt=0"`
}

type StorageConfig struct {
	DownloadPath string        `validate:"required"`
	DownloadTTL  time.Duration `validate:"gt=0"`
	MaxFileSize  int64         `validate:"gt=0"`
}

type SessionConfig struct {
	CookieName string        `validate:"required"`
	TTL        time.Duration `validate:"gt=0"`
	Secure     bool
}

// RedisConfig is optional; an empty URL keeps view state in memory.
type RedisConfig struct {
	URL      string `validate:"omitempty,url"`
	Password string
}

type UIConfig struct {
	SilentErrors bool
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Services: ServicesConfig{
			MatchURL:   getEnv("MATCH_SERVICE_URL", "http://localhost:5000/match"),
			EnhanceURL: getEnv("ENHANCE_SERVICE_URL", "http://localhost:5001/enhance"),
			BuilderURL: getEnv("BUILDER_URL", "http://localhost:8501"),
			Timeout:    getEnvAsDuration("SERVICE_TIMEOUT", "60s"),
		},
		Storage: StorageConfig{
			DownloadPath: getEnv("DOWNLOAD_PATH", "./downloads"),
			DownloadTTL:  getEnvAsDuration("DOWNLOAD_TTL", "30m"),
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "rs_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", "30m"),
			Secure:     getEnvAsBool("SESSION_SECURE", false),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		UI: UIConfig{
			SilentErrors: getEnvAsBool("UI_SILENT_ERRORS", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", defaultLogFormat(getEnv("ENV", "development"))),
		},
	}
}

// Validate checks the loaded values before anything is wired to them.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func defaultLogFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

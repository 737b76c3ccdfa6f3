package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OpenAI   OpenAIConfig
	Cache    CacheConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	AIRateLimit    string   `envconfig:"AI_RATE_LIMIT" default:"20-M"`
}

type DatabaseConfig struct {
	URL         string `envconfig:"DATABASE_URL"`
	Host        string `envconfig:"DB_HOST"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD"`
	Name        string `envconfig:"DB_NAME" default:"postgres"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"require"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`
}

type OpenAIConfig struct {
	APIKey     string        `envconfig:"OPENAI_API_KEY"`
	BaseURL    string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Model      string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Timeout    time.Duration `envconfig:"OPENAI_TIMEOUT" default:"30s"`
	MaxRetries int           `envconfig:"OPENAI_MAX_RETRIES" default:"2"`
}

type CacheConfig struct {
	RedisURL string        `envconfig:"REDIS_URL"`
	TTL      time.Duration `envconfig:"AI_CACHE_TTL" default:"1h"`
}

type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// Load reads an optional .env file and decodes the environment into Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}
	return FromEnv()
}

// FromEnv decodes the current process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	for _, section := range []any{&cfg.Server, &cfg.Database, &cfg.Auth, &cfg.OpenAI, &cfg.Cache, &cfg.App} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.OpenAI.MaxRetries < 0 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must not be negative")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise builds one from the DB_* parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// AIEnabled reports whether an LLM API key is configured.
func (o OpenAIConfig) AIEnabled() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

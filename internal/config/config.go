package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"furniture-catalog/internal/store"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` name the environment variable;
// `default:""` applies when it is unset.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`     // json, text
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Store      StoreConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	AMQP       AMQPConfig
	Sheets     SheetsConfig
	Enrich     EnrichConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"30s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	RateLimit    int           `envconfig:"HTTP_SERVER_RATE_LIMIT" default:"120"` // requests per minute per IP
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// StoreConfig picks the persistence backend.
type StoreConfig struct {
	Backend    string `envconfig:"STORE_BACKEND" default:"sqlite"`
	FilePath   string `envconfig:"STORE_FILE_PATH" default:"data/furniture.json"`
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"data/furniture.db"`
}

// PostgresConfig holds PostgreSQL connection details. Only read when
// STORE_BACKEND=postgres.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// DSN builds a lib/pq URL, escaping the credentials.
func (pc *PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pc.User, pc.Password),
		Host:     pc.Host + ":" + pc.Port,
		Path:     "/" + pc.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(pc.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Key string `envconfig:"REDIS_KEY" default:"furniture:items"`
}

// AMQPConfig enables item-change events when URL is set.
type AMQPConfig struct {
	URL      string `envconfig:"AMQP_URL"`
	Exchange string `envconfig:"AMQP_EXCHANGE" default:"furniture.items"`
}

// SheetsConfig enables the Google Sheets export when SpreadsheetID is set.
type SheetsConfig struct {
	SpreadsheetID   string `envconfig:"SHEETS_SPREADSHEET_ID"`
	CredentialsFile string `envconfig:"SHEETS_CREDENTIALS_FILE"`
	SheetName       string `envconfig:"SHEETS_SHEET_NAME" default:"Budget"`
}

type EnrichConfig struct {
	FetchImages  bool          `envconfig:"ENRICH_FETCH_IMAGES" default:"true"`
	FetchTimeout time.Duration `envconfig:"ENRICH_FETCH_TIMEOUT" default:"10s"`
	Concurrency  int           `envconfig:"ENRICH_CONCURRENCY" default:"4"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"chrome-extension://*,http://localhost:*"`
}

// Load reads envFiles (default ".env") into the environment, then populates
// a Config from it. Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.AppEnv {
	case "development", "staging", "production", "test":
	default:
		problems = append(problems, fmt.Sprintf("APP_ENV %q must be one of development, staging, production, test", c.AppEnv))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT %q must be json or text", c.LogFormat))
	}
	if c.HttpServer.Port == "" {
		problems = append(problems, "HTTP_SERVER_PORT is required")
	}
	if c.GrpcServer.Port == "" {
		problems = append(problems, "GRPC_SERVER_PORT is required")
	}
	if c.HttpServer.Port != "" && c.HttpServer.Port == c.GrpcServer.Port {
		problems = append(problems, "HTTP_SERVER_PORT and GRPC_SERVER_PORT must differ")
	}
	if c.HttpServer.RateLimit < 0 {
		problems = append(problems, "HTTP_SERVER_RATE_LIMIT must not be negative")
	}

	backend := store.BackendType(c.Store.Backend)
	if !backend.IsValid() {
		problems = append(problems, fmt.Sprintf("STORE_BACKEND %q must be one of memory, file, sqlite, postgres, redis", c.Store.Backend))
	}
	switch backend {
	case store.FileBackend:
		if c.Store.FilePath == "" {
			problems = append(problems, "STORE_FILE_PATH is required for the file backend")
		}
	case store.SQLiteBackend:
		if c.Store.SQLitePath == "" {
			problems = append(problems, "STORE_SQLITE_PATH is required for the sqlite backend")
		}
	case store.PostgresBackend:
		if c.Postgres.User == "" {
			problems = append(problems, "POSTGRES_USER is required for the postgres backend")
		}
		if c.Postgres.DBName == "" {
			problems = append(problems, "POSTGRES_DBNAME is required for the postgres backend")
		}
	case store.RedisBackend:
		if c.Redis.URL == "" {
			problems = append(problems, "REDIS_URL is required for the redis backend")
		}
		if c.Redis.Key == "" {
			problems = append(problems, "REDIS_KEY is required for the redis backend")
		}
	}

	if c.AMQP.URL != "" && c.AMQP.Exchange == "" {
		problems = append(problems, "AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	if c.Sheets.SpreadsheetID != "" && c.Sheets.SheetName == "" {
		problems = append(problems, "SHEETS_SHEET_NAME is required when SHEETS_SPREADSHEET_ID is set")
	}
	if c.Enrich.FetchTimeout <= 0 {
		problems = append(problems, "ENRICH_FETCH_TIMEOUT must be positive")
	}
	if c.Enrich.Concurrency < 1 {
		problems = append(problems, "ENRICH_CONCURRENCY must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// StoreOptions maps the configuration onto the store factory's options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:     store.BackendType(c.Store.Backend),
		FilePath:    c.Store.FilePath,
		SQLitePath:  c.Store.SQLitePath,
		PostgresDSN: c.Postgres.DSN(),
		RedisURL:    c.Redis.URL,
		RedisKey:    c.Redis.Key,
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

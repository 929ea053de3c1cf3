package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend identifiers accepted by STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Tickets  TicketConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls the admin HTTP server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DiscordConfig holds gateway credentials and the guild the bot serves.
type DiscordConfig struct {
	Token   string
	GuildID string
}

// TicketConfig names the guild resources the ticket workflow relies on.
type TicketConfig struct {
	CategoryName     string
	PanelChannel     string
	LogChannel       string
	DefaultRole      string
	TemplateFile     string
	AuditTimeoutSecs int
}

// StoreConfig selects where the ticket document lives.
type StoreConfig struct {
	Backend  string
	FilePath string
	Key      string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin API token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Tickets: TicketConfig{
			CategoryName:     getEnv("TICKET_CATEGORY", "SUPPORT"),
			PanelChannel:     getEnv("TICKET_PANEL_CHANNEL", "ticket-system"),
			LogChannel:       getEnv("TICKET_LOG_CHANNEL", "ticket-logs"),
			DefaultRole:      getEnv("TICKET_DEFAULT_ROLE", "Member"),
			TemplateFile:     getEnv("TICKET_TEMPLATE_FILE", "server_template.json"),
			AuditTimeoutSecs: getEnvAsInt("TICKET_AUDIT_TIMEOUT_SECONDS", 5),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),
			FilePath: getEnv("STORE_FILE", "ticket_counter.json"),
			Key:      getEnv("STORE_KEY", "ticket-bot:store"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
	}

	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateDiscord checks the settings the gateway cannot start without.
func (c *Config) ValidateDiscord() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("DISCORD_GUILD_ID is required")
	}
	return nil
}

func (s StoreConfig) validate() error {
	switch s.Backend {
	case BackendFile:
		if s.FilePath == "" {
			return fmt.Errorf("STORE_FILE is required for the file backend")
		}
	case BackendRedis, BackendPostgres:
		if s.Key == "" {
			return fmt.Errorf("STORE_KEY is required for the %s backend", s.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", s.Backend)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AuditTimeout bounds a single audit log delivery.
func (t TicketConfig) AuditTimeout() time.Duration {
	if t.AuditTimeoutSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(t.AuditTimeoutSecs) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

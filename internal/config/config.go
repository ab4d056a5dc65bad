package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Platform     PlatformConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreBackend selects the snapshot persistence backend.
type StoreBackend string

const (
	StoreBackendFile     StoreBackend = "file"
	StoreBackendRedis    StoreBackend = "redis"
	StoreBackendPostgres StoreBackend = "postgres"
)

// StoreConfig selects and parameterizes snapshot persistence.
type StoreConfig struct {
	Backend  StoreBackend
	FilePath string
}

// PostgresConfig holds DB connection values for the postgres store backend.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the redis store backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminPasswordHash     string
}

// PlatformConfig identifies the chat-platform gateway and the fixed
// destinations the bot writes to.
type PlatformConfig struct {
	GatewayURL                    string
	GatewayToken                  string
	TicketCategoryID              string
	ArchiveChannelID              string
	ReviewChannelID               string
	PanelChannelID                string
	AdminRoleID                   string
	TeardownDelaySeconds          int
	HistoryFetchLimit             int
	RequestTimeoutSeconds         int
	SecurityNoticeIntervalMinutes int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := StoreBackend(getEnv("STORE_BACKEND", string(StoreBackendFile)))
	switch backend {
	case StoreBackendFile, StoreBackendRedis, StoreBackendPostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND: %q", backend)
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
		Store: StoreConfig{
			Backend:  backend,
			FilePath: getEnv("STORE_FILE_PATH", "data/tickets.json"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Key:      getEnv("REDIS_SNAPSHOT_KEY", "ticket-bot:snapshot"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminPasswordHash:     os.Getenv("AUTH_ADMIN_PASSWORD_HASH"),
		},
		Platform: PlatformConfig{
			GatewayURL:            getEnv("PLATFORM_GATEWAY_URL", "http://127.0.0.1:9090"),
			GatewayToken:          os.Getenv("PLATFORM_GATEWAY_TOKEN"),
			TicketCategoryID:      os.Getenv("PLATFORM_TICKET_CATEGORY_ID"),
			ArchiveChannelID:      os.Getenv("PLATFORM_ARCHIVE_CHANNEL_ID"),
			ReviewChannelID:       os.Getenv("PLATFORM_REVIEW_CHANNEL_ID"),
			PanelChannelID:        os.Getenv("PLATFORM_PANEL_CHANNEL_ID"),
			AdminRoleID:           os.Getenv("PLATFORM_ADMIN_ROLE_ID"),
			TeardownDelaySeconds:          getEnvAsInt("PLATFORM_TEARDOWN_DELAY_SECONDS", 5),
			HistoryFetchLimit:             getEnvAsInt("PLATFORM_HISTORY_FETCH_LIMIT", 100),
			RequestTimeoutSeconds:         getEnvAsInt("PLATFORM_REQUEST_TIMEOUT_SECONDS", 10),
			SecurityNoticeIntervalMinutes: getEnvAsInt("PLATFORM_SECURITY_NOTICE_INTERVAL_MINUTES", 50),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
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

// TeardownDelay returns the grace delay before channel teardown.
func (p PlatformConfig) TeardownDelay() time.Duration {
	if p.TeardownDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(p.TeardownDelaySeconds) * time.Second
}

// SecurityNoticeInterval returns how often the security notice broadcast
// refreshes.
func (p PlatformConfig) SecurityNoticeInterval() time.Duration {
	if p.SecurityNoticeIntervalMinutes <= 0 {
		return 50 * time.Minute
	}
	return time.Duration(p.SecurityNoticeIntervalMinutes) * time.Minute
}

// RequestTimeout returns the outbound gateway call timeout.
func (p PlatformConfig) RequestTimeout() time.Duration {
	if p.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
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

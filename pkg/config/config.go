package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. Startup logs a
// warning whenever it is in effect.
const DefaultSessionSecret = "default_secret"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	Session      SessionConfig
	Mail         MailConfig
	Verification VerificationConfig
	Seed         SeedConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Allowed CORS origins; credentials are allowed for these
	ClientOrigins []string

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// SessionConfig controls the session cookie and its server-side store
type SessionConfig struct {
	Secret       string
	Store        string // "sql", "redis", "memory"
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	MemorySize   int
}

// UsingDefaultSecret reports whether the insecure fallback secret is active
func (s SessionConfig) UsingDefaultSecret() bool {
	return s.Secret == DefaultSessionSecret
}

// MailConfig holds outbound mail settings
type MailConfig struct {
	Transport string // "smtp", "log"
	Host      string
	Port      int
	User      string
	Pass      string
	From      string
	Subject   string
	Timeout   time.Duration
}

// VerificationConfig holds registration verification settings
type VerificationConfig struct {
	TTL           time.Duration
	SweepEnabled  bool
	SweepSchedule string
	BcryptCost    int
}

// SeedConfig describes accounts created at boot
type SeedConfig struct {
	SuperadminIdentity string
	SuperadminPassword string
	UsersFile          string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Session:       loadSessionConfig(),
		Mail:          loadMailConfig(),
		Verification:  loadVerificationConfig(),
		Seed:          loadSeedConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "3000"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("MAX_BODY_BYTES", 1<<20),
		ClientOrigins:   splitList(getEnv("CLIENT_ORIGIN", "http://localhost:3000")),
		HealthPort:      getEnv("HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if driver := getEnv("DATABASE_DRIVER", ""); driver != "" {
		cfg.Driver = strings.ToLower(driver)
	}
	if url := getEnv("DATABASE_URL", ""); url != "" {
		cfg.URL = url
	}
	if maxConns := getEnvInt("DATABASE_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if maxIdle := getEnvInt("DATABASE_MAX_IDLE_CONNS", 0); maxIdle > 0 {
		cfg.MaxIdleConns = maxIdle
	}
	if lifetime := getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 0); lifetime > 0 {
		cfg.ConnMaxLifetime = lifetime
	}
	if timeout := getEnvDuration("DATABASE_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}

	// Redis config
	cfg.RedisURL = getEnv("REDIS_URL", "")
	if retries := getEnvInt("REDIS_MAX_RETRIES", 0); retries > 0 {
		cfg.RedisMaxRetries = retries
	}
	if poolSize := getEnvInt("REDIS_POOL_SIZE", 0); poolSize > 0 {
		cfg.RedisPoolSize = poolSize
	}

	return cfg
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		Secret:       getEnv("SESSION_SECRET", DefaultSessionSecret),
		Store:        strings.ToLower(getEnv("SESSION_STORE", "sql")),
		TTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
		CookieName:   getEnv("SESSION_COOKIE_NAME", "ideagrave.sid"),
		CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		MemorySize:   getEnvInt("SESSION_MEMORY_SIZE", 10000),
	}
}

func loadMailConfig() MailConfig {
	user := getEnv("MAIL_USER", "")

	transport := "log"
	if user != "" {
		transport = "smtp"
	}

	return MailConfig{
		Transport: strings.ToLower(getEnv("MAIL_TRANSPORT", transport)),
		Host:      getEnv("MAIL_HOST", "smtp.gmail.com"),
		Port:      getEnvInt("MAIL_PORT", 587),
		User:      user,
		Pass:      getEnv("MAIL_PASS", ""),
		From:      getEnv("MAIL_FROM", user),
		Subject:   getEnv("MAIL_SUBJECT", "[Idea Graveyard] Email verification code"),
		Timeout:   getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
	}
}

func loadVerificationConfig() VerificationConfig {
	return VerificationConfig{
		TTL:           getEnvDuration("VERIFICATION_TTL", 180*time.Second),
		SweepEnabled:  getEnvBool("VERIFICATION_SWEEP_ENABLED", true),
		SweepSchedule: getEnv("VERIFICATION_SWEEP_SCHEDULE", "@every 5m"),
		BcryptCost:    getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{
		SuperadminIdentity: getEnv("SUPERADMIN_IDENTITY", ""),
		SuperadminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
		UsersFile:          getEnv("SEED_USERS_FILE", ""),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("OTEL_SERVICE_NAME", "ideagrave"),
		OTelServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate storage config
	switch c.Storage.Driver {
	case storage.DriverSQLite, storage.DriverPostgres, storage.DriverPgx:
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite3, postgres, or pgx)", c.Storage.Driver)
	}
	if c.Storage.URL == "" {
		return fmt.Errorf("database URL is required")
	}

	switch c.Session.Store {
	case "sql", "memory":
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis session store")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be sql, redis, or memory)", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.Store == "memory" && c.Session.MemorySize <= 0 {
		return fmt.Errorf("session memory size must be positive")
	}

	switch c.Mail.Transport {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			return fmt.Errorf("mail host is required for smtp transport")
		}
		if c.Mail.From == "" {
			return fmt.Errorf("mail sender is required for smtp transport")
		}
		if c.Mail.Timeout <= 0 {
			return fmt.Errorf("mail timeout must be positive for smtp transport")
		}
	default:
		return fmt.Errorf("invalid mail transport: %s (must be smtp or log)", c.Mail.Transport)
	}

	if c.Verification.TTL <= 0 {
		return fmt.Errorf("verification TTL must be positive")
	}
	if c.Verification.BcryptCost < bcrypt.MinCost || c.Verification.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

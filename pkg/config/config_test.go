package config

import (
	"os"
	"testing"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"HOST", "PORT", "HEALTH_PORT", "CLIENT_ORIGIN", "MAX_BODY_BYTES",
	"DATABASE_DRIVER", "DATABASE_URL", "DATABASE_MAX_CONNS", "REDIS_URL",
	"SESSION_SECRET", "SESSION_STORE", "SESSION_TTL", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE",
	"MAIL_TRANSPORT", "MAIL_HOST", "MAIL_PORT", "MAIL_USER", "MAIL_PASS", "MAIL_FROM", "MAIL_SUBJECT", "MAIL_TIMEOUT",
	"VERIFICATION_TTL", "VERIFICATION_SWEEP_ENABLED", "VERIFICATION_SWEEP_SCHEDULE", "BCRYPT_COST",
	"SUPERADMIN_IDENTITY", "SUPERADMIN_PASSWORD", "SEED_USERS_FILE",
	"LOG_LEVEL", "METRICS_ENABLED", "OTEL_ENABLED", "OTEL_ENDPOINT", "OTEL_SERVICE_NAME",
}

// clearEnv blanks every variable LoadConfig reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"false", "false", true, false},
		{"garbage is false", "yes", true, false},
		{"unset uses default", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvNumbers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")
	t.Setenv("TEST_INT64", "1048576")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_BAD_DURATION", "soon")

	assert.Equal(t, 42, getEnvInt("TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("TEST_BAD_INT", 1))
	assert.Equal(t, int64(1048576), getEnvInt64("TEST_INT64", 0))
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvDuration("TEST_BAD_DURATION", time.Second))
}

// TestParseLogLevel tests log level parsing
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  observability.LogLevel
	}{
		{"debug", observability.DebugLevel},
		{"INFO", observability.InfoLevel},
		{"warn", observability.WarnLevel},
		{"warning", observability.WarnLevel},
		{"error", observability.ErrorLevel},
		{"verbose", observability.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a , ,http://b"))
	assert.Nil(t, splitList(""))
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.ClientOrigins)

	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "ideagrave.db", cfg.Storage.URL)

	assert.Equal(t, "sql", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "ideagrave.sid", cfg.Session.CookieName)
	assert.True(t, cfg.Session.UsingDefaultSecret())

	assert.Equal(t, "log", cfg.Mail.Transport)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 10*time.Second, cfg.Mail.Timeout)

	assert.Equal(t, 180*time.Second, cfg.Verification.TTL)
	assert.True(t, cfg.Verification.SweepEnabled)
	assert.Equal(t, "@every 5m", cfg.Verification.SweepSchedule)
	assert.Equal(t, 10, cfg.Verification.BcryptCost)

	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadConfig_MailUserSelectsSMTP(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL_USER", "bot@example.com")
	t.Setenv("MAIL_PASS", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "smtp", cfg.Mail.Transport)
	assert.Equal(t, "bot@example.com", cfg.Mail.From)
}

func TestLoadConfig_MailTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIL_USER", "bot@example.com")
	t.Setenv("MAIL_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Mail.Timeout)

	t.Setenv("MAIL_TIMEOUT", "0s")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "mail timeout must be positive")
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "PGX")
	t.Setenv("DATABASE_URL", "postgres://localhost/ideagrave")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_SECRET", "s3cr3t")
	t.Setenv("VERIFICATION_TTL", "5m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, storage.DriverPgx, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.IsPostgres())
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.False(t, cfg.Session.UsingDefaultSecret())
	assert.Equal(t, 5*time.Minute, cfg.Verification.TTL)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "3000", HealthPort: "9090"},
			Storage: storage.DefaultConfig(),
			Session: SessionConfig{Store: "sql", TTL: time.Hour, MemorySize: 10},
			Mail:    MailConfig{Transport: "log"},
			Verification: VerificationConfig{
				TTL:        180 * time.Second,
				BcryptCost: 10,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"same ports", func(c *Config) { c.Server.HealthPort = "3000" }, "server port and health port must be different"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "mysql" }, "invalid database driver"},
		{"missing database url", func(c *Config) { c.Storage.URL = "" }, "database URL is required"},
		{"bad session store", func(c *Config) { c.Session.Store = "file" }, "invalid session store"},
		{"redis without url", func(c *Config) { c.Session.Store = "redis" }, "redis URL is required"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "session TTL must be positive"},
		{"bad mail transport", func(c *Config) { c.Mail.Transport = "carrier-pigeon" }, "invalid mail transport"},
		{"smtp without sender", func(c *Config) {
			c.Mail.Transport = "smtp"
			c.Mail.Host = "smtp.example.com"
		}, "mail sender is required"},
		{"smtp without timeout", func(c *Config) {
			c.Mail.Transport = "smtp"
			c.Mail.Host = "smtp.example.com"
			c.Mail.From = "bot@example.com"
		}, "mail timeout must be positive"},
		{"zero verification ttl", func(c *Config) { c.Verification.TTL = 0 }, "verification TTL must be positive"},
		{"bcrypt cost too high", func(c *Config) { c.Verification.BcryptCost = 40 }, "bcrypt cost must be between"},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "ideagrave"
		}, "OpenTelemetry endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

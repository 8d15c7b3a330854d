// Package config loads application configuration from environment variables.
//
// Every setting has a default so the server starts with an empty
// environment against a local SQLite file. LoadConfig validates the result
// and returns an error describing the first inconsistent setting.
//
// Server settings:
//
//	HOST="0.0.0.0"
//	PORT="3000"
//	HEALTH_PORT="9090"
//	CLIENT_ORIGIN="http://localhost:3000,https://ideas.example.com"
//
// Storage settings:
//
//	DATABASE_DRIVER="postgres"  # sqlite3, postgres, pgx
//	DATABASE_URL="postgres://localhost/ideagrave?sslmode=disable"
//	REDIS_URL="redis://localhost:6379/0"
//
// Session settings:
//
//	SESSION_SECRET="change-me"
//	SESSION_STORE="sql"  # sql, redis, memory
//	SESSION_TTL="24h"
//
// Mail and verification:
//
//	MAIL_USER="bot@example.com"
//	MAIL_PASS="app-password"
//	MAIL_TIMEOUT="10s"
//	VERIFICATION_TTL="180s"
//	VERIFICATION_SWEEP_SCHEDULE="@every 5m"
//
// Observability:
//
//	LOG_LEVEL="debug"
//	METRICS_ENABLED="true"
//	OTEL_ENABLED="true"
//	OTEL_ENDPOINT="otel-collector:4317"
//
// A .env file in the working directory is loaded by the binary before
// LoadConfig runs.
package config

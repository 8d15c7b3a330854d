package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/platinummonkey/ideagrave/pkg/admin"
	"github.com/platinummonkey/ideagrave/pkg/api"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/config"
	"github.com/platinummonkey/ideagrave/pkg/httputil"
	"github.com/platinummonkey/ideagrave/pkg/ideas"
	"github.com/platinummonkey/ideagrave/pkg/mail"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/registration"
	"github.com/platinummonkey/ideagrave/pkg/seed"
	"github.com/platinummonkey/ideagrave/pkg/session"
	"github.com/platinummonkey/ideagrave/pkg/storage/redisstore"
	"github.com/platinummonkey/ideagrave/pkg/storage/sqlstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ideagrave: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	bgLogger := observability.NewBackgroundLogger(cfg.Observability.LogLevel, os.Stdout)

	if cfg.Session.UsingDefaultSecret() {
		logger.Warn("SESSION_SECRET is not set, sessions are signed with the default secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return err
	}

	// Database
	db, err := sqlstore.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()
	logger.WithField("driver", cfg.Storage.Driver).Info("Database connected")

	if err := sqlstore.Migrate(ctx, db, cfg.Storage.Driver, bgLogger); err != nil {
		return err
	}
	store := sqlstore.New(db)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	metrics.RegisterDBStats(db, "ideagrave")

	hasher := auth.NewBcryptHasher(cfg.Verification.BcryptCost)
	if err := seedAccounts(ctx, cfg.Seed, seed.NewSeeder(store, hasher, logger)); err != nil {
		return err
	}

	// Sessions
	sessionStore, purger, redisClient, err := openSessionStore(ctx, cfg, store)
	if err != nil {
		return err
	}
	sessions := session.NewManager(sessionStore, session.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.CookieSecure,
	})
	logger.WithField("store", cfg.Session.Store).Info("Session store ready")

	// Services
	mailer := mail.Instrument(newMailTransport(cfg.Mail, bgLogger), metrics)
	workflow := registration.NewWorkflow(store, mailer, hasher, registration.Config{
		TTL:     cfg.Verification.TTL,
		Subject: cfg.Mail.Subject,
	}, metrics)

	authService, err := auth.NewService(store, hasher, metrics)
	if err != nil {
		return err
	}

	var sweeper *registration.Sweeper
	if cfg.Verification.SweepEnabled {
		sweeper = registration.NewSweeper(store, purger, cfg.Verification.TTL, metrics, bgLogger)
		if err := sweeper.Start(cfg.Verification.SweepSchedule); err != nil {
			return err
		}
	}

	// HTTP
	apiServer := api.NewServer(api.Deps{
		Registration: workflow,
		Auth:         authService,
		Ideas:        ideas.NewService(store),
		Admin:        admin.NewService(store),
		Sessions:     sessions,
		Metrics:      metrics,
	})

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.ClientOrigins),
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	)(apiServer)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      observability.TraceHandler(handler, "ideagrave-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient).WithVersion(version))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	if sweeper != nil {
		shutdown.RegisterShutdownFunc("sweeper", sweeper.Stop)
	}
	shutdown.RegisterShutdownFunc("otel", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	shutdown.RegisterShutdownFunc("database", func(context.Context) error {
		return db.Close()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer observability.RecoverPanic(logger, "api server")
		logger.WithField("addr", httpServer.Addr).Infof("Starting ideagrave %s", version)
		return serve(httpServer)
	})
	g.Go(func() error {
		defer observability.RecoverPanic(logger, "health server")
		logger.WithField("addr", healthServer.Addr).Info("Starting health server")
		return serve(healthServer)
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})

	return g.Wait()
}

// serve runs srv until it is shut down
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server %s: %w", srv.Addr, err)
	}
	return nil
}

// seedAccounts creates the configured superadmin and the accounts listed in
// the seed file
func seedAccounts(ctx context.Context, cfg config.SeedConfig, seeder *seed.Seeder) error {
	var accounts []seed.Account
	if cfg.SuperadminIdentity != "" && cfg.SuperadminPassword != "" {
		accounts = append(accounts, seed.Account{
			Identity: cfg.SuperadminIdentity,
			Password: cfg.SuperadminPassword,
			Role:     auth.RoleSuperadmin,
		})
	}

	if cfg.UsersFile != "" {
		fromFile, err := seed.LoadFile(cfg.UsersFile)
		if err != nil {
			return err
		}
		accounts = append(accounts, fromFile...)
	}

	if _, err := seeder.Seed(ctx, accounts...); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	return nil
}

// openSessionStore builds the configured session store. purger is nil unless
// expired sessions need sweeping, and client is nil unless Redis is used.
func openSessionStore(ctx context.Context, cfg *config.Config, store *sqlstore.Store) (session.Store, session.Purger, *redis.Client, error) {
	switch cfg.Session.Store {
	case "redis":
		client, err := redisstore.NewClient(ctx, cfg.Storage)
		if err != nil {
			return nil, nil, nil, err
		}
		return redisstore.NewSessionStore(client), nil, client, nil
	case "memory":
		return session.NewMemoryStore(cfg.Session.MemorySize, cfg.Session.TTL), nil, nil, nil
	default:
		sessions := store.Sessions()
		return sessions, sessions, nil, nil
	}
}

// newMailTransport returns the SMTP relay, or the log transport for
// development
func newMailTransport(cfg config.MailConfig, logger *logrus.Logger) mail.Transport {
	if cfg.Transport == "smtp" {
		return mail.NewSMTPTransport(mail.SMTPConfig{
			Host:    cfg.Host,
			Port:    cfg.Port,
			User:    cfg.User,
			Pass:    cfg.Pass,
			From:    cfg.From,
			Timeout: cfg.Timeout,
		})
	}
	return mail.NewLogTransport(logger)
}

package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc is a function to call during shutdown
type ShutdownFunc func(context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager handles graceful shutdown of the HTTP servers and the
// resources behind them. Servers are drained first, then hooks run in
// registration order so that later resources (database) outlive earlier
// ones (cron, sessions).
type ShutdownManager struct {
	logger  *Logger
	servers []*http.Server
	hooks   []shutdownHook
	timeout time.Duration
	mu      sync.Mutex
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(logger *Logger, timeout time.Duration, servers ...*http.Server) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:  logger,
		servers: servers,
		timeout: timeout,
	}
}

// RegisterShutdownFunc registers a named function to call during shutdown
func (sm *ShutdownManager) RegisterShutdownFunc(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.hooks = append(sm.hooks, shutdownHook{name: name, fn: fn})
}

// WaitForShutdown blocks until SIGINT/SIGTERM or ctx is done, then shuts down
func (sm *ShutdownManager) WaitForShutdown(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		sm.logger.Infof("Received signal %s, starting graceful shutdown", sig)
	case <-ctx.Done():
		sm.logger.Info("Context cancelled, starting graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()
	return sm.Shutdown(shutdownCtx)
}

// Shutdown drains the servers and runs every hook. All hooks run even when
// earlier ones fail; the errors are joined.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	var errs []error

	for _, srv := range sm.servers {
		if srv == nil {
			continue
		}
		sm.logger.WithField("addr", srv.Addr).Info("Shutting down HTTP server")
		if err := srv.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("HTTP server shutdown error")
			errs = append(errs, fmt.Errorf("http server %s: %w", srv.Addr, err))
		}
	}

	sm.mu.Lock()
	hooks := append([]shutdownHook(nil), sm.hooks...)
	sm.mu.Unlock()

	for _, hook := range hooks {
		if ctx.Err() != nil {
			sm.logger.Warn("Shutdown timeout reached, skipping remaining hooks")
			errs = append(errs, fmt.Errorf("shutdown timeout reached before %s", hook.name))
			break
		}
		if err := hook.fn(ctx); err != nil {
			sm.logger.WithError(err).WithField("hook", hook.name).Error("Shutdown hook failed")
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			continue
		}
		sm.logger.WithField("hook", hook.name).Debug("Shutdown hook complete")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	sm.logger.Info("Graceful shutdown complete")
	return nil
}

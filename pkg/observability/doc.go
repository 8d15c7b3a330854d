// Package observability provides structured logging, Prometheus metrics,
// health checks, graceful shutdown and OpenTelemetry tracing.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", id).Info("login succeeded")
//
// Background jobs log through logrus with the same level:
//
//	bg := observability.NewBackgroundLogger(observability.InfoLevel, os.Stdout)
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	metrics.ObserveLogin("ok")
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//	handler = observability.TraceHandler(handler, "ideagrave")
package observability

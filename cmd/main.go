package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/courtview/internal/adapters/cache"
	"github.com/okian/courtview/internal/adapters/datasource"
	"github.com/okian/courtview/internal/adapters/http/api"
	"github.com/okian/courtview/internal/adapters/http/site"
	"github.com/okian/courtview/internal/adapters/http/swagger"
	app "github.com/okian/courtview/internal/app"
	"github.com/okian/courtview/internal/config"
	"github.com/okian/courtview/pkg/logger"
	"github.com/okian/courtview/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	ds, err := openDataSource(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to open data source: " + err.Error() + "\n")
		return
	}

	svc := app.New(
		cache.NewLoader(ds, openStore(ctx, cfg)),
		app.WithLogger(loggerInstance.Named("service")),
		app.WithPinger(ds),
		app.WithYears(cfg.Years...),
		app.WithDefaultRange(cfg.DefaultRankLow, cfg.DefaultRankHigh),
		app.WithHistogramBins(cfg.HistogramBins),
		app.WithWarmup(cfg.Warmup),
		app.WithRefreshSchedule(cfg.CacheRefreshCron),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		_ = ds.Close()
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newHandler registers every route on a fresh mux. The site owns "/", so it
// is registered last and only receives paths nothing else claims.
func newHandler(ctx context.Context, svc *app.Service) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	site.Register(ctx, mux)

	return api.RequestID(mux)
}

// openDataSource builds the MySQL pool. An unreachable server is logged and
// tolerated: requests render warnings until it comes back.
func openDataSource(ctx context.Context, cfg *config.Config) (*datasource.MySQL, error) {
	db, err := datasource.OpenDB(poolConfig(cfg))
	if err != nil {
		return nil, err
	}
	ds := datasource.New(db,
		datasource.WithQueryTimeout(cfg.QueryTimeout()),
		datasource.WithLogger(logger.Named("datasource")),
	)
	if err := ds.Ping(ctx); err != nil {
		logger.Get().Warn(ctx, "data source unreachable at startup",
			logger.String("addr", cfg.DBAddr()),
			logger.Error(err),
		)
	}
	return ds, nil
}

func poolConfig(cfg *config.Config) datasource.PoolConfig {
	return datasource.PoolConfig{
		Addr:            cfg.DBAddr(),
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		Database:        cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime(),
		ConnectTimeout:  cfg.ConnectTimeout(),
	}
}

// openStore selects the cache backend. A redis that cannot be reached falls
// back to the in-process store.
func openStore(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.CacheBackend == config.CacheBackendRedis {
		store, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cache.WithTTL(cfg.CacheTTL()))
		if err == nil {
			logger.Get().Info(ctx, "using redis result cache", logger.String("addr", cfg.RedisAddr))
			return store
		}
		logger.Get().Warn(ctx, "redis unavailable; using in-memory result cache", logger.Error(err))
	}
	return cache.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheTTL())
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges that expire without a cache write.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	stats := svc.GetStats(ctx)
	if st, ok := stats["cache"].(cache.Stats); ok && st.Entries >= 0 {
		metrics.UpdateCacheEntries(st.Entries)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/orcamentos/internal/config"
	"github.com/JonMunkholm/orcamentos/internal/core"
	"github.com/JonMunkholm/orcamentos/internal/license"
	"github.com/JonMunkholm/orcamentos/internal/logging"
	"github.com/JonMunkholm/orcamentos/internal/metrics"
	"github.com/JonMunkholm/orcamentos/internal/store"
	"github.com/JonMunkholm/orcamentos/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, pool); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		slog.Info("schema applied")
	}

	noticeStore, closeNotices := newNoticeStore(ctx, cfg.Redis.URL)
	defer closeNotices()

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	service := core.NewService(
		store.NewPgBudgetRepository(pool),
		store.NewPgLicenseRepository(pool),
		license.NewNotifier(noticeStore, cfg.License.NoticeDays),
		core.Options{
			MaxFileSize:        cfg.Import.MaxFileSize,
			MaxConcurrent:      cfg.Import.MaxConcurrent,
			MaxWaitTime:        cfg.Import.MaxWaitTime,
			ImportTimeout:      cfg.Import.Timeout,
			TrashRetentionDays: cfg.Trash.RetentionDays,
		},
	)

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartTrashPurgeScheduler(jobCtx, core.TrashPurgeConfig{
		RetentionDays: cfg.Trash.RetentionDays,
		BatchSize:     cfg.Trash.BatchSize,
		CheckInterval: cfg.Trash.CheckInterval,
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	cancelJobs()
	slog.Info("server stopped")
}

// newNoticeStore uses Redis when configured so notices are shown once per
// day across replicas, and process memory otherwise.
func newNoticeStore(ctx context.Context, redisURL string) (license.Store, func()) {
	if redisURL == "" {
		slog.Info("license notices use in-memory de-duplication")
		return license.NewMemoryStore(), func() {}
	}

	rs, err := license.NewRedisStore(redisURL)
	if err != nil {
		slog.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	if err := rs.Ping(ctx); err != nil {
		slog.Error("failed to reach redis", "error", err)
		os.Exit(1)
	}
	slog.Info("license notices use redis de-duplication")
	return rs, func() {
		if err := rs.Close(); err != nil {
			slog.Warn("redis close", "error", err)
		}
	}
}

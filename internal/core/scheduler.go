package core

// scheduler.go runs the trash purge in the background.
//
// Budgets trashed longer than the retention period are deleted in batches.
// A failed run is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/metrics"
)

// TrashPurgeConfig holds configuration for the purge scheduler.
// Zero values fall back to defaults.
type TrashPurgeConfig struct {
	RetentionDays int           // Days a budget stays restorable (default: 30)
	BatchSize     int           // Rows per delete statement (default: 1000)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c TrashPurgeConfig) withDefaults() TrashPurgeConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultTrashRetentionDays
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartTrashPurgeScheduler purges expired trash immediately, then every
// CheckInterval, until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Service) StartTrashPurgeScheduler(ctx context.Context, cfg TrashPurgeConfig) {
	cfg = cfg.withDefaults()
	slog.Info("trash purge scheduler started",
		"retention_days", cfg.RetentionDays,
		"batch_size", cfg.BatchSize,
		"interval", cfg.CheckInterval.String(),
	)

	s.PurgeTrash(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("trash purge scheduler stopped")
			return
		case <-ticker.C:
			s.PurgeTrash(ctx, cfg)
		}
	}
}

// PurgeTrash performs one purge cycle and returns the number of budgets
// removed. Errors are logged, not returned.
func (s *Service) PurgeTrash(ctx context.Context, cfg TrashPurgeConfig) int64 {
	cfg = cfg.withDefaults()
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -cfg.RetentionDays)

	purged, err := s.budgets.PurgeTrashed(ctx, cutoff, cfg.BatchSize)
	if purged > 0 {
		metrics.TrashPurged.Add(float64(purged))
	}
	if err != nil {
		slog.Error("trash purge failed", "purged", purged, "error", err)
		return purged
	}

	slog.Info("trash purge completed",
		"purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}

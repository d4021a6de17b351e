package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/budgetcsv"
	"github.com/JonMunkholm/orcamentos/internal/license"
	"github.com/JonMunkholm/orcamentos/internal/logging"
	"github.com/JonMunkholm/orcamentos/internal/metrics"
	"github.com/JonMunkholm/orcamentos/internal/store"
	"github.com/google/uuid"
)

// ErrInvalidOwner is returned when the caller's owner id is not a UUID.
var ErrInvalidOwner = errors.New("invalid owner id")

// ErrNotFound is the store sentinel, re-exported for callers of Service.
var ErrNotFound = store.ErrNotFound

// Service provides the budget exchange operations for authenticated owners.
type Service struct {
	budgets  store.BudgetRepository
	licenses store.LicenseRepository
	notifier *license.Notifier
	limiter  *ImportLimiter
	opts     Options
	now      func() time.Time
}

// NewService wires the repositories and the notice de-duplication into a
// Service.
func NewService(budgets store.BudgetRepository, licenses store.LicenseRepository, notifier *license.Notifier, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		budgets:  budgets,
		licenses: licenses,
		notifier: notifier,
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		opts:     opts,
		now:      time.Now,
	}
}

// Template returns the CSV template offered for download.
func (s *Service) Template() string {
	return budgetcsv.Template()
}

// ImportBudgets parses an uploaded CSV and stores every budget in it for
// ownerID, or nothing at all. Import file errors are returned unwrapped so
// their text reaches the user as is.
func (s *Service) ImportBudgets(ctx context.Context, ownerID string, r io.Reader) (*ImportResult, error) {
	if err := validateID(ownerID); err != nil {
		return nil, ErrInvalidOwner
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyImports) {
			metrics.ImportsTotal.WithLabelValues(metrics.OutcomeBusy).Inc()
		}
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	start := time.Now()
	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID)

	content, err := ReadImport(r, s.opts.MaxFileSize)
	if err != nil {
		logger.Info("import rejected", "error", err)
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	budgets, err := budgetcsv.ParseAt(content, ownerID, s.now())
	if err != nil {
		if budgetcsv.IsImportError(err) {
			logger.Info("import rejected", "error", err)
		} else {
			logger.Warn("import unreadable", "error", err)
		}
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	inserted, err := s.budgets.InsertBudgets(ctx, importID, budgets)
	if err != nil {
		logger.Error("import failed", "records", len(budgets), "error", err)
		metrics.ImportsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("store budgets: %w", err)
	}

	elapsed := time.Since(start)
	metrics.ImportsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.ImportedBudgets.Add(float64(inserted))
	metrics.ImportDuration.Observe(elapsed.Seconds())
	logger.Info("import completed",
		"records", inserted,
		"bytes", len(content),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &ImportResult{ImportID: importID, Inserted: inserted, Duration: elapsed}, nil
}

// ExportBudgets renders the owner's budgets outside the trash as CSV.
func (s *Service) ExportBudgets(ctx context.Context, ownerID string) (string, error) {
	if err := validateID(ownerID); err != nil {
		return "", ErrInvalidOwner
	}

	budgets, err := s.budgets.ListActive(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("list budgets: %w", err)
	}

	out := budgetcsv.Format(budgets, s.now())
	metrics.ExportsTotal.Inc()
	logging.FromContext(ctx).Info("export served", "records", len(budgets))
	return out, nil
}

// ImportStatus reports limiter occupancy.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func validateID(id string) error {
	_, err := uuid.Parse(id)
	return err
}

// Package store persists budgets and reads licenses from PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a budget or license does not exist for the
// owner, or is not in the state the operation expects.
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schemaSQL string

// BudgetRepository handles persistence for budgets. Every method except
// PurgeTrashed is scoped to one owner.
type BudgetRepository interface {
	// InsertBudgets stores all budgets in one transaction, tagged with importID.
	InsertBudgets(ctx context.Context, importID string, budgets []model.Budget) (int64, error)
	// ListActive returns the owner's budgets that are not in the trash, oldest first.
	ListActive(ctx context.Context, ownerID string) ([]model.Budget, error)
	// ListTrashed returns the owner's trashed budgets, most recently trashed first.
	ListTrashed(ctx context.Context, ownerID string) ([]model.Budget, error)
	// Trash soft-deletes an active budget.
	Trash(ctx context.Context, ownerID, id string) error
	// Restore moves a trashed budget back to the active list.
	Restore(ctx context.Context, ownerID, id string) error
	// DeleteTrashed permanently removes a trashed budget.
	DeleteTrashed(ctx context.Context, ownerID, id string) error
	// ListImports summarizes the owner's imports, newest first.
	ListImports(ctx context.Context, ownerID string) ([]model.ImportSummary, error)
	// TrashImport trashes every active budget of one import and returns how
	// many were moved.
	TrashImport(ctx context.Context, ownerID, importID string) (int64, error)
	// PurgeTrashed permanently removes budgets trashed before cutoff,
	// batchSize rows per statement. Returns the number removed.
	PurgeTrashed(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

// LicenseRepository reads license rows maintained by the auth backend.
type LicenseRepository interface {
	GetLicense(ctx context.Context, ownerID string) (*model.License, error)
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/orcamentos/internal/logging"
	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/JonMunkholm/orcamentos/internal/store"
)

// UndoResult reports an undone import.
type UndoResult struct {
	ImportID string `json:"import_id"`
	Trashed  int64  `json:"trashed"`
}

// ListImports returns the owner's import history, newest first.
func (s *Service) ListImports(ctx context.Context, ownerID string) ([]model.ImportSummary, error) {
	if err := validateID(ownerID); err != nil {
		return nil, ErrInvalidOwner
	}
	imports, err := s.budgets.ListImports(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return imports, nil
}

// UndoImport moves every budget still active from one import to the trash,
// where it stays restorable until purged. Returns ErrNotFound when the
// import has nothing left to undo.
func (s *Service) UndoImport(ctx context.Context, ownerID, importID string) (*UndoResult, error) {
	if err := validateID(ownerID); err != nil {
		return nil, ErrInvalidOwner
	}
	if err := validateID(importID); err != nil {
		return nil, ErrNotFound
	}

	n, err := s.budgets.TrashImport(ctx, ownerID, importID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("undo import: %w", err)
	}

	logging.FromContext(ctx).Info("import undone", "import_id", importID, "trashed", n)
	return &UndoResult{ImportID: importID, Trashed: n}, nil
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/logging"
	"github.com/JonMunkholm/orcamentos/internal/store"
)

// TrashBudget moves one of the owner's budgets to the trash. A budget that
// is missing, already trashed or owned by someone else yields ErrNotFound.
func (s *Service) TrashBudget(ctx context.Context, ownerID, id string) error {
	return s.budgetAction(ctx, "trash", ownerID, id, s.budgets.Trash)
}

// RestoreBudget brings a trashed budget back.
func (s *Service) RestoreBudget(ctx context.Context, ownerID, id string) error {
	return s.budgetAction(ctx, "restore", ownerID, id, s.budgets.Restore)
}

// DeleteFromTrash removes a trashed budget permanently.
func (s *Service) DeleteFromTrash(ctx context.Context, ownerID, id string) error {
	return s.budgetAction(ctx, "delete", ownerID, id, s.budgets.DeleteTrashed)
}

func (s *Service) budgetAction(ctx context.Context, action, ownerID, id string, fn func(context.Context, string, string) error) error {
	if err := validateID(ownerID); err != nil {
		return ErrInvalidOwner
	}
	// Malformed ids cannot match a row.
	if err := validateID(id); err != nil {
		return ErrNotFound
	}

	if err := fn(ctx, ownerID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s budget: %w", action, err)
	}

	logging.FromContext(ctx).Info("budget "+action, "budget_id", id)
	return nil
}

// ListTrash returns the owner's trashed budgets with their purge date.
func (s *Service) ListTrash(ctx context.Context, ownerID string) ([]TrashEntry, error) {
	if err := validateID(ownerID); err != nil {
		return nil, ErrInvalidOwner
	}

	budgets, err := s.budgets.ListTrashed(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}

	retention := time.Duration(s.opts.TrashRetentionDays) * 24 * time.Hour
	entries := make([]TrashEntry, 0, len(budgets))
	for _, b := range budgets {
		if b.DeletedAt == nil {
			continue
		}
		entries = append(entries, TrashEntry{
			ID:          b.ID,
			DeviceType:  b.DeviceType,
			DeviceModel: b.DeviceModel,
			ServiceType: b.ServiceType,
			TotalCents:  b.TotalPriceCents,
			DeletedAt:   *b.DeletedAt,
			PurgeAt:     b.DeletedAt.Add(retention),
		})
	}
	return entries, nil
}

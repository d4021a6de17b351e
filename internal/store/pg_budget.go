package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgBudgetRepository struct {
	pool *pgxpool.Pool
}

// NewPgBudgetRepository returns a PostgreSQL-backed BudgetRepository.
func NewPgBudgetRepository(pool *pgxpool.Pool) BudgetRepository {
	return &pgBudgetRepository{pool: pool}
}

// copyColumns lists the columns written by InsertBudgets, in budgetCopyRow order.
var copyColumns = []string{
	"owner_id", "import_id", "client_name", "client_phone",
	"device_type", "device_brand", "device_model", "issue", "service_type", "notes",
	"total_price_cents", "installment_price_cents", "installments", "payment_condition",
	"warranty_months", "valid_until", "includes_delivery", "includes_screen_protector",
}

func budgetCopyRow(b *model.Budget, importID pgtype.UUID) []any {
	return []any{
		ToPgUUID(b.OwnerID), importID, ToPgText(b.ClientName), ToPgText(b.ClientPhone),
		b.DeviceType, ToPgText(b.DeviceBrand), b.DeviceModel, b.Issue, b.ServiceType, ToPgText(b.Notes),
		b.TotalPriceCents, ToPgInt8(b.InstallmentPriceCents), int32(b.Installments), b.PaymentCondition,
		int32(b.WarrantyMonths), b.ValidUntil, b.IncludesDelivery, b.IncludesScreenProtector,
	}
}

const budgetSelectCols = `id, owner_id, client_name, client_phone,
	device_type, device_brand, device_model, issue, service_type, notes,
	total_price_cents, installment_price_cents, installments, payment_condition,
	warranty_months, valid_until, includes_delivery, includes_screen_protector,
	created_at, deleted_at`

func scanBudget(scan func(...any) error) (model.Budget, error) {
	var (
		b                          model.Budget
		id, owner                  pgtype.UUID
		clientName, clientPhone    pgtype.Text
		brand, notes               pgtype.Text
		installmentPrice           pgtype.Int8
		installments, warrantyMths int32
		deletedAt                  pgtype.Timestamptz
	)

	err := scan(
		&id, &owner, &clientName, &clientPhone,
		&b.DeviceType, &brand, &b.DeviceModel, &b.Issue, &b.ServiceType, &notes,
		&b.TotalPriceCents, &installmentPrice, &installments, &b.PaymentCondition,
		&warrantyMths, &b.ValidUntil, &b.IncludesDelivery, &b.IncludesScreenProtector,
		&b.CreatedAt, &deletedAt,
	)
	if err != nil {
		return model.Budget{}, err
	}

	b.ID = PgUUIDToString(id)
	b.OwnerID = PgUUIDToString(owner)
	b.ClientName = FromPgText(clientName)
	b.ClientPhone = FromPgText(clientPhone)
	b.DeviceBrand = FromPgText(brand)
	b.Notes = FromPgText(notes)
	b.InstallmentPriceCents = FromPgInt8(installmentPrice)
	b.Installments = int(installments)
	b.WarrantyMonths = int(warrantyMths)
	b.DeletedAt = FromPgTimestamptz(deletedAt)
	return b, nil
}

func (r *pgBudgetRepository) InsertBudgets(ctx context.Context, importID string, budgets []model.Budget) (int64, error) {
	if len(budgets) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	pgImportID := ToPgUUID(importID)
	rows := make([][]any, len(budgets))
	for i := range budgets {
		rows[i] = budgetCopyRow(&budgets[i], pgImportID)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"budgets"}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy budgets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}

func (r *pgBudgetRepository) list(ctx context.Context, query string, ownerID string) ([]model.Budget, error) {
	rows, err := r.pool.Query(ctx, query, ToPgUUID(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *pgBudgetRepository) ListActive(ctx context.Context, ownerID string) ([]model.Budget, error) {
	return r.list(ctx,
		`SELECT `+budgetSelectCols+`
		 FROM budgets
		 WHERE owner_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at, id`,
		ownerID)
}

func (r *pgBudgetRepository) ListTrashed(ctx context.Context, ownerID string) ([]model.Budget, error) {
	return r.list(ctx,
		`SELECT `+budgetSelectCols+`
		 FROM budgets
		 WHERE owner_id = $1 AND deleted_at IS NOT NULL
		 ORDER BY deleted_at DESC, id`,
		ownerID)
}

// execOne runs a statement expected to touch exactly one owned budget.
func (r *pgBudgetRepository) execOne(ctx context.Context, query, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, query, ToPgUUID(id), ToPgUUID(ownerID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgBudgetRepository) Trash(ctx context.Context, ownerID, id string) error {
	return r.execOne(ctx,
		`UPDATE budgets SET deleted_at = NOW()
		 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`,
		ownerID, id)
}

func (r *pgBudgetRepository) Restore(ctx context.Context, ownerID, id string) error {
	return r.execOne(ctx,
		`UPDATE budgets SET deleted_at = NULL
		 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`,
		ownerID, id)
}

func (r *pgBudgetRepository) DeleteTrashed(ctx context.Context, ownerID, id string) error {
	return r.execOne(ctx,
		`DELETE FROM budgets
		 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`,
		ownerID, id)
}

func (r *pgBudgetRepository) PurgeTrashed(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	var total int64
	for {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM budgets
			 WHERE id IN (
			     SELECT id FROM budgets
			     WHERE deleted_at IS NOT NULL AND deleted_at < $1
			     LIMIT $2
			 )`,
			cutoff, batchSize)
		if err != nil {
			return total, err
		}

		n := tag.RowsAffected()
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

func (r *pgBudgetRepository) ListImports(ctx context.Context, ownerID string) ([]model.ImportSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT import_id,
		        MIN(created_at),
		        COUNT(*) FILTER (WHERE deleted_at IS NULL),
		        COUNT(*) FILTER (WHERE deleted_at IS NOT NULL)
		 FROM budgets
		 WHERE owner_id = $1 AND import_id IS NOT NULL
		 GROUP BY import_id
		 ORDER BY MIN(created_at) DESC`,
		ToPgUUID(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ImportSummary
	for rows.Next() {
		var (
			s  model.ImportSummary
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &s.ImportedAt, &s.Active, &s.Trashed); err != nil {
			return nil, err
		}
		s.ImportID = PgUUIDToString(id)
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *pgBudgetRepository) TrashImport(ctx context.Context, ownerID, importID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET deleted_at = NOW()
		 WHERE owner_id = $1 AND import_id = $2 AND deleted_at IS NULL`,
		ToPgUUID(ownerID), ToPgUUID(importID))
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return tag.RowsAffected(), nil
}

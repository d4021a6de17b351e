package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var sampleBudget = model.Budget{
	DeviceType:       "Smartphone",
	DeviceModel:      "Galaxy A54",
	Issue:            "Tela quebrada",
	ServiceType:      "Troca de tela",
	TotalPriceCents:  35000,
	Installments:     1,
	PaymentCondition: model.PaymentUpfront,
	WarrantyMonths:   3,
	ValidUntil:       time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
}

// testPool connects to TEST_DATABASE_URL and applies the schema, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}

func TestPgBudgetRepository_Lifecycle(t *testing.T) {
	pool := testPool(t)
	repo := NewPgBudgetRepository(pool)
	ctx := context.Background()

	owner := uuid.NewString()
	other := uuid.NewString()

	first, second := sampleBudget, sampleBudget
	first.OwnerID, second.OwnerID = owner, owner
	brand := "Apple"
	price := int64(12000)
	second.DeviceBrand = &brand
	second.InstallmentPriceCents = &price

	n, err := repo.InsertBudgets(ctx, uuid.NewString(), []model.Budget{first, second})
	if err != nil {
		t.Fatalf("InsertBudgets: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d, want 2", n)
	}

	active, err := repo.ListActive(ctx, owner)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}
	withBrand := 0
	for _, a := range active {
		if a.DeviceBrand != nil && *a.DeviceBrand == "Apple" && a.InstallmentPriceCents != nil {
			withBrand++
		}
	}
	if withBrand != 1 {
		t.Errorf("budgets with brand and installment price = %d, want 1", withBrand)
	}

	id := active[0].ID

	if err := repo.Trash(ctx, other, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Trash by other owner err = %v, want ErrNotFound", err)
	}
	if err := repo.Restore(ctx, owner, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Restore of active budget err = %v, want ErrNotFound", err)
	}
	if err := repo.Trash(ctx, owner, id); err != nil {
		t.Fatalf("Trash: %v", err)
	}

	trashed, err := repo.ListTrashed(ctx, owner)
	if err != nil {
		t.Fatalf("ListTrashed: %v", err)
	}
	if len(trashed) != 1 || !trashed[0].InTrash() {
		t.Fatalf("trashed = %+v, want one trashed budget", trashed)
	}

	if err := repo.Restore(ctx, owner, id); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := repo.Trash(ctx, owner, id); err != nil {
		t.Fatalf("Trash again: %v", err)
	}
	if err := repo.DeleteTrashed(ctx, owner, id); err != nil {
		t.Fatalf("DeleteTrashed: %v", err)
	}
	if err := repo.DeleteTrashed(ctx, owner, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTrashed err = %v, want ErrNotFound", err)
	}
}

func TestPgBudgetRepository_Imports(t *testing.T) {
	pool := testPool(t)
	repo := NewPgBudgetRepository(pool)
	ctx := context.Background()

	owner := uuid.NewString()
	b := sampleBudget
	b.OwnerID = owner

	older, newer := uuid.NewString(), uuid.NewString()
	if _, err := repo.InsertBudgets(ctx, older, []model.Budget{b}); err != nil {
		t.Fatalf("InsertBudgets: %v", err)
	}
	if _, err := repo.InsertBudgets(ctx, newer, []model.Budget{b, b, b}); err != nil {
		t.Fatalf("InsertBudgets: %v", err)
	}

	n, err := repo.TrashImport(ctx, owner, newer)
	if err != nil {
		t.Fatalf("TrashImport: %v", err)
	}
	if n != 3 {
		t.Errorf("TrashImport moved %d, want 3", n)
	}
	if _, err := repo.TrashImport(ctx, owner, newer); !errors.Is(err, ErrNotFound) {
		t.Errorf("second TrashImport err = %v, want ErrNotFound", err)
	}
	if _, err := repo.TrashImport(ctx, uuid.NewString(), older); !errors.Is(err, ErrNotFound) {
		t.Errorf("TrashImport by other owner err = %v, want ErrNotFound", err)
	}

	imports, err := repo.ListImports(ctx, owner)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(imports))
	}
	if imports[0].ImportID != newer || imports[0].Active != 0 || imports[0].Trashed != 3 {
		t.Errorf("newest import = %+v", imports[0])
	}
	if imports[1].ImportID != older || imports[1].Active != 1 || imports[1].Trashed != 0 {
		t.Errorf("oldest import = %+v", imports[1])
	}
}

func TestPgBudgetRepository_PurgeTrashed(t *testing.T) {
	pool := testPool(t)
	repo := NewPgBudgetRepository(pool)
	ctx := context.Background()

	owner := uuid.NewString()
	b := sampleBudget
	b.OwnerID = owner

	if _, err := repo.InsertBudgets(ctx, uuid.NewString(), []model.Budget{b, b, b}); err != nil {
		t.Fatalf("InsertBudgets: %v", err)
	}
	active, err := repo.ListActive(ctx, owner)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	for _, a := range active {
		if err := repo.Trash(ctx, owner, a.ID); err != nil {
			t.Fatalf("Trash: %v", err)
		}
	}

	purged, err := repo.PurgeTrashed(ctx, time.Now().Add(time.Minute), 2)
	if err != nil {
		t.Fatalf("PurgeTrashed: %v", err)
	}
	if purged < 3 {
		t.Errorf("purged = %d, want at least 3", purged)
	}

	trashed, err := repo.ListTrashed(ctx, owner)
	if err != nil {
		t.Fatalf("ListTrashed: %v", err)
	}
	if len(trashed) != 0 {
		t.Errorf("trash still holds %d budgets", len(trashed))
	}
}

func TestPgLicenseRepository_GetLicense(t *testing.T) {
	pool := testPool(t)
	repo := NewPgLicenseRepository(pool)
	ctx := context.Background()

	if _, err := repo.GetLicense(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLicense(unknown) err = %v, want ErrNotFound", err)
	}

	owner := uuid.NewString()
	expires := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	if _, err := pool.Exec(ctx,
		`INSERT INTO licenses (owner_id, plan, expires_at) VALUES ($1, $2, $3)`,
		ToPgUUID(owner), "pro", expires); err != nil {
		t.Fatalf("seed license: %v", err)
	}

	l, err := repo.GetLicense(ctx, owner)
	if err != nil {
		t.Fatalf("GetLicense: %v", err)
	}
	if l.OwnerID != owner || l.Plan != "pro" || !l.ExpiresAt.Equal(expires) {
		t.Errorf("license = %+v", l)
	}
}

package store

import (
	"context"
	"errors"

	"github.com/JonMunkholm/orcamentos/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgLicenseRepository struct {
	pool *pgxpool.Pool
}

// NewPgLicenseRepository returns a PostgreSQL-backed LicenseRepository.
func NewPgLicenseRepository(pool *pgxpool.Pool) LicenseRepository {
	return &pgLicenseRepository{pool: pool}
}

func (r *pgLicenseRepository) GetLicense(ctx context.Context, ownerID string) (*model.License, error) {
	var (
		owner pgtype.UUID
		l     model.License
	)
	err := r.pool.QueryRow(ctx,
		`SELECT owner_id, plan, expires_at FROM licenses WHERE owner_id = $1`,
		ToPgUUID(ownerID),
	).Scan(&owner, &l.Plan, &l.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	l.OwnerID = PgUUIDToString(owner)
	return &l, nil
}

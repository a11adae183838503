package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// LeaseRepository encapsulates lease persistence.
type LeaseRepository interface {
	Create(ctx context.Context, lease *domain.Lease) error
	UpdateStatus(ctx context.Context, id string, status domain.LeaseStatus) error
	GetByID(ctx context.Context, id string) (*domain.Lease, error)
	ListByProperty(ctx context.Context, propertyID string) ([]domain.Lease, error)
}

type leaseRepository struct {
	pool *pgxpool.Pool
}

// NewLeaseRepository instantiates repository.
func NewLeaseRepository(pool *pgxpool.Pool) LeaseRepository {
	return &leaseRepository{pool: pool}
}

func (r *leaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	const query = `
        INSERT INTO leases (property_id, tenant_id, start_date, end_date, monthly_rent, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		lease.PropertyID,
		lease.TenantID,
		lease.StartDate,
		lease.EndDate,
		lease.MonthlyRent,
		lease.Status,
	).Scan(&lease.ID, &lease.CreatedAt, &lease.UpdatedAt)
}

func (r *leaseRepository) UpdateStatus(ctx context.Context, id string, status domain.LeaseStatus) error {
	const query = `
        UPDATE leases SET status=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaseRepository) GetByID(ctx context.Context, id string) (*domain.Lease, error) {
	const query = `
        SELECT id, property_id, tenant_id, start_date, end_date, monthly_rent, status, created_at, updated_at
        FROM leases WHERE id=$1`
	var lease domain.Lease
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&lease.ID,
		&lease.PropertyID,
		&lease.TenantID,
		&lease.StartDate,
		&lease.EndDate,
		&lease.MonthlyRent,
		&lease.Status,
		&lease.CreatedAt,
		&lease.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *leaseRepository) ListByProperty(ctx context.Context, propertyID string) ([]domain.Lease, error) {
	const query = `
        SELECT id, property_id, tenant_id, start_date, end_date, monthly_rent, status, created_at, updated_at
        FROM leases WHERE property_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Lease
	for rows.Next() {
		var lease domain.Lease
		if err := rows.Scan(
			&lease.ID,
			&lease.PropertyID,
			&lease.TenantID,
			&lease.StartDate,
			&lease.EndDate,
			&lease.MonthlyRent,
			&lease.Status,
			&lease.CreatedAt,
			&lease.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, lease)
	}
	return result, rows.Err()
}

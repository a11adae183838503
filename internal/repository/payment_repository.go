package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// PaymentRepository encapsulates rent payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByLease(ctx context.Context, leaseID string) ([]domain.Payment, error)
	SumByLease(ctx context.Context, leaseID string) (float64, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (lease_id, amount, method, paid_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		payment.LeaseID,
		payment.Amount,
		payment.Method,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (r *paymentRepository) ListByLease(ctx context.Context, leaseID string) ([]domain.Payment, error) {
	const query = `
        SELECT id, lease_id, amount, method, paid_at, created_at
        FROM payments WHERE lease_id=$1 ORDER BY paid_at DESC`
	rows, err := r.pool.Query(ctx, query, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.LeaseID,
			&payment.Amount,
			&payment.Method,
			&payment.PaidAt,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}

func (r *paymentRepository) SumByLease(ctx context.Context, leaseID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE lease_id=$1`
	var total float64
	if err := r.pool.QueryRow(ctx, query, leaseID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

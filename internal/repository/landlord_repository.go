package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// LandlordRepository handles persistence for landlord profiles.
type LandlordRepository interface {
	Create(ctx context.Context, landlord *domain.Landlord) error
	Update(ctx context.Context, landlord *domain.Landlord) error
	GetByID(ctx context.Context, id string) (*domain.Landlord, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Landlord, error)
}

type landlordRepository struct {
	pool *pgxpool.Pool
}

// NewLandlordRepository instantiates the repository.
func NewLandlordRepository(pool *pgxpool.Pool) LandlordRepository {
	return &landlordRepository{pool: pool}
}

func (r *landlordRepository) Create(ctx context.Context, landlord *domain.Landlord) error {
	const query = `
        INSERT INTO landlords (user_id, first_name, last_name, phone)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		landlord.UserID,
		landlord.FirstName,
		landlord.LastName,
		landlord.Phone,
	).Scan(&landlord.ID, &landlord.CreatedAt, &landlord.UpdatedAt)
}

func (r *landlordRepository) Update(ctx context.Context, landlord *domain.Landlord) error {
	const query = `
        UPDATE landlords SET first_name=$1, last_name=$2, phone=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		landlord.FirstName,
		landlord.LastName,
		landlord.Phone,
		landlord.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *landlordRepository) GetByID(ctx context.Context, id string) (*domain.Landlord, error) {
	const query = `
        SELECT id, user_id, first_name, last_name, phone, created_at, updated_at
        FROM landlords WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *landlordRepository) GetByUserID(ctx context.Context, userID string) (*domain.Landlord, error) {
	const query = `
        SELECT id, user_id, first_name, last_name, phone, created_at, updated_at
        FROM landlords WHERE user_id=$1`
	return r.fetchSingle(ctx, query, userID)
}

func (r *landlordRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Landlord, error) {
	var landlord domain.Landlord
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&landlord.ID,
		&landlord.UserID,
		&landlord.FirstName,
		&landlord.LastName,
		&landlord.Phone,
		&landlord.CreatedAt,
		&landlord.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &landlord, nil
}

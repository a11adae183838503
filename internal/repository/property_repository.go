package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// PropertyFilter captures property search parameters.
type PropertyFilter struct {
	LandlordID *string
	AgentID    *string
	City       *string
	Statuses   []domain.PropertyStatus
	Limit      int
	Offset     int
}

// PropertyRepository encapsulates property persistence.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, property *domain.Property) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	ListWithFilter(ctx context.Context, filter PropertyFilter) ([]domain.Property, error)
	AssignAgent(ctx context.Context, propertyID, agentID string) error
	ClearAgent(ctx context.Context, agentID string) ([]string, error)
}

type propertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository instantiates repository.
func NewPropertyRepository(pool *pgxpool.Pool) PropertyRepository {
	return &propertyRepository{pool: pool}
}

const propertySelect = `
        SELECT id, landlord_id, agent_id, title, address, city, rent, bedrooms, bathrooms, status, created_at, updated_at
        FROM properties`

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	const query = `
        INSERT INTO properties (landlord_id, agent_id, title, address, city, rent, bedrooms, bathrooms, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		property.LandlordID,
		property.AgentID,
		property.Title,
		property.Address,
		property.City,
		property.Rent,
		property.Bedrooms,
		property.Bathrooms,
		property.Status,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)
}

func (r *propertyRepository) Update(ctx context.Context, property *domain.Property) error {
	const query = `
        UPDATE properties SET agent_id=$1, title=$2, address=$3, city=$4, rent=$5,
            bedrooms=$6, bathrooms=$7, status=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		property.AgentID,
		property.Title,
		property.Address,
		property.City,
		property.Rent,
		property.Bedrooms,
		property.Bathrooms,
		property.Status,
		property.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM properties WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	const query = propertySelect + ` WHERE id=$1`
	var property domain.Property
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.LandlordID,
		&property.AgentID,
		&property.Title,
		&property.Address,
		&property.City,
		&property.Rent,
		&property.Bedrooms,
		&property.Bathrooms,
		&property.Status,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) ListWithFilter(ctx context.Context, filter PropertyFilter) ([]domain.Property, error) {
	query := propertySelect
	args := []any{}
	clauses := []string{}

	if filter.LandlordID != nil {
		args = append(args, *filter.LandlordID)
		clauses = append(clauses, fmt.Sprintf("landlord_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_id=$%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		clauses = append(clauses, fmt.Sprintf("city=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Property
	for rows.Next() {
		var property domain.Property
		if err := rows.Scan(
			&property.ID,
			&property.LandlordID,
			&property.AgentID,
			&property.Title,
			&property.Address,
			&property.City,
			&property.Rent,
			&property.Bedrooms,
			&property.Bathrooms,
			&property.Status,
			&property.CreatedAt,
			&property.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, property)
	}
	return result, rows.Err()
}

func (r *propertyRepository) AssignAgent(ctx context.Context, propertyID, agentID string) error {
	const query = `
        UPDATE properties SET agent_id=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, agentID, propertyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ClearAgent nulls agent_id on every property managed by the agent and returns
// the affected property ids.
func (r *propertyRepository) ClearAgent(ctx context.Context, agentID string) ([]string, error) {
	const query = `
        UPDATE properties SET agent_id=NULL, updated_at=NOW()
        WHERE agent_id=$1
        RETURNING id`
	rows, err := r.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// AgentRepository handles persistence for agent profiles.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
	SetActive(ctx context.Context, id string, active bool) error
	SetCommissionRate(ctx context.Context, id string, rate float64) error
	AddEarnings(ctx context.Context, id string, amount float64) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
}

// AgentFilter defines query params for agent listing.
type AgentFilter struct {
	Active *bool
	Limit  int
	Offset int
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (user_id, first_name, last_name, phone, active_flag, commission_rate, total_earnings, joined_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
        RETURNING id, joined_at, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		agent.UserID,
		agent.FirstName,
		agent.LastName,
		agent.Phone,
		agent.Active,
		agent.CommissionRate,
		agent.TotalEarnings,
	).Scan(&agent.ID, &agent.JoinedAt, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	const query = `
        UPDATE agents
        SET first_name=$1, last_name=$2, phone=$3, active_flag=$4, commission_rate=$5, total_earnings=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		agent.FirstName,
		agent.LastName,
		agent.Phone,
		agent.Active,
		agent.CommissionRate,
		agent.TotalEarnings,
		agent.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `
        UPDATE agents SET active_flag=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) SetCommissionRate(ctx context.Context, id string, rate float64) error {
	const query = `
        UPDATE agents SET commission_rate=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, rate, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) AddEarnings(ctx context.Context, id string, amount float64) error {
	const query = `
        UPDATE agents SET total_earnings=total_earnings+$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, amount, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	const query = agentSelect + ` WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agentRepository) GetByUserID(ctx context.Context, userID string) (*domain.Agent, error) {
	const query = agentSelect + ` WHERE user_id=$1`
	return r.fetchSingle(ctx, query, userID)
}

const agentSelect = `
        SELECT id, user_id, first_name, last_name, phone, active_flag, commission_rate, total_earnings, joined_at, created_at, updated_at
        FROM agents`

func (r *agentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&agent.ID,
		&agent.UserID,
		&agent.FirstName,
		&agent.LastName,
		&agent.Phone,
		&agent.Active,
		&agent.CommissionRate,
		&agent.TotalEarnings,
		&agent.JoinedAt,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error) {
	query := agentSelect
	args := []any{}
	clauses := []string{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
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

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := rows.Scan(
			&agent.ID,
			&agent.UserID,
			&agent.FirstName,
			&agent.LastName,
			&agent.Phone,
			&agent.Active,
			&agent.CommissionRate,
			&agent.TotalEarnings,
			&agent.JoinedAt,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}

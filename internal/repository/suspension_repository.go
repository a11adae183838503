package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// SuspensionRepository manages explicit suspension records.
type SuspensionRepository interface {
	Create(ctx context.Context, suspension *domain.Suspension) error
	Lift(ctx context.Context, id string) error
	LatestByAgent(ctx context.Context, agentID string) (*domain.Suspension, error)
}

type suspensionRepository struct {
	pool *pgxpool.Pool
}

// NewSuspensionRepository constructs repository.
func NewSuspensionRepository(pool *pgxpool.Pool) SuspensionRepository {
	return &suspensionRepository{pool: pool}
}

func (r *suspensionRepository) Create(ctx context.Context, suspension *domain.Suspension) error {
	const query = `
        INSERT INTO suspensions (agent_id, reason, days, notes, starts_at, ends_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		suspension.AgentID,
		suspension.Reason,
		suspension.Days,
		suspension.Notes,
		suspension.StartsAt,
		suspension.EndsAt,
	).Scan(&suspension.ID, &suspension.CreatedAt)
}

func (r *suspensionRepository) Lift(ctx context.Context, id string) error {
	const query = `
        UPDATE suspensions SET lifted_at=NOW()
        WHERE id=$1 AND lifted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// LatestByAgent returns the newest suspension row for the agent, lifted or not.
func (r *suspensionRepository) LatestByAgent(ctx context.Context, agentID string) (*domain.Suspension, error) {
	const query = `
        SELECT id, agent_id, reason, days, notes, starts_at, ends_at, lifted_at, created_at
        FROM suspensions WHERE agent_id=$1
        ORDER BY created_at DESC LIMIT 1`
	var suspension domain.Suspension
	if err := r.pool.QueryRow(ctx, query, agentID).Scan(
		&suspension.ID,
		&suspension.AgentID,
		&suspension.Reason,
		&suspension.Days,
		&suspension.Notes,
		&suspension.StartsAt,
		&suspension.EndsAt,
		&suspension.LiftedAt,
		&suspension.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &suspension, nil
}

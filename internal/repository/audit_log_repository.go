package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estatedesk/estate-service/internal/domain"
)

// AuditLogRepository stores append-only lifecycle events.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.AuditEntry, error)
	LatestByAction(ctx context.Context, action domain.AuditAction, entityID string) (*domain.AuditEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (actor_user_id, action, entity_type, entity_id, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ActorUserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, actor_user_id, action, entity_type, entity_id, details, created_at
        FROM audit_log WHERE entity_type=$1 AND entity_id=$2 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var details []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorUserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Details = decodeDetails(details)
		result = append(result, entry)
	}
	return result, rows.Err()
}

// LatestByAction returns the most recent entry for an (action, entity) pair.
func (r *auditLogRepository) LatestByAction(ctx context.Context, action domain.AuditAction, entityID string) (*domain.AuditEntry, error) {
	const query = `
        SELECT id, actor_user_id, action, entity_type, entity_id, details, created_at
        FROM audit_log WHERE action=$1 AND entity_id=$2
        ORDER BY created_at DESC LIMIT 1`
	var entry domain.AuditEntry
	var details []byte
	if err := r.pool.QueryRow(ctx, query, action, entityID).Scan(
		&entry.ID,
		&entry.ActorUserID,
		&entry.Action,
		&entry.EntityType,
		&entry.EntityID,
		&details,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Details = decodeDetails(details)
	return &entry, nil
}

// decodeDetails reads a details payload that may be a JSON object or, in rows
// written by earlier versions, a JSON string wrapping a serialized object.
func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var details map[string]any
	if err := json.Unmarshal(raw, &details); err == nil {
		return details
	}
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if err := json.Unmarshal([]byte(wrapped), &details); err == nil {
			return details
		}
		return map[string]any{"details": wrapped}
	}
	return nil
}

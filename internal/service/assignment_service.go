package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/repository"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

// AssignmentService handles assigning agents to landlord-owned properties.
type AssignmentService struct {
	properties repository.PropertyRepository
	agents     repository.AgentRepository
	landlords  repository.LandlordRepository
	audit      repository.AuditLogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	PropertyRepo repository.PropertyRepository
	AgentRepo    repository.AgentRepository
	LandlordRepo repository.LandlordRepository
	AuditRepo    repository.AuditLogRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		properties: deps.PropertyRepo,
		agents:     deps.AgentRepo,
		landlords:  deps.LandlordRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// AssignAgent puts an active agent in charge of a property the calling
// landlord owns, optionally updating the agent's commission rate.
func (s *AssignmentService) AssignAgent(ctx context.Context, landlordUserID, propertyID, agentID string, commissionRate *float64) error {
	landlord, err := s.landlords.GetByUserID(ctx, landlordUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("landlord", nil)
		}
		return apperrors.MapError(err)
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("property", map[string]any{"property_id": propertyID})
		}
		return apperrors.MapError(err)
	}
	// Ownership failures surface the same way as missing rows.
	if property.LandlordID != landlord.ID {
		return apperrors.NewNotFound("property", map[string]any{"property_id": propertyID})
	}

	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}
	if !agent.Active {
		return apperrors.NewConflict("agent is not active", map[string]any{"agent_id": agentID})
	}

	if err := s.properties.AssignAgent(ctx, property.ID, agent.ID); err != nil {
		return apperrors.MapError(err)
	}

	if commissionRate != nil {
		if err := s.agents.SetCommissionRate(ctx, agent.ID, *commissionRate); err != nil {
			return apperrors.MapError(err)
		}
	}

	entry := &domain.AuditEntry{
		ActorUserID: &landlordUserID,
		Action:      domain.AuditAgentAssigned,
		EntityType:  domain.AuditEntityProperty,
		EntityID:    property.ID,
		Details: map[string]any{
			"agent_id": agent.ID,
		},
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("action", string(domain.AuditAgentAssigned)),
			zap.String("property_id", property.ID),
			zap.Error(err))
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventAgentAssigned,
			ActorUserID: &landlordUserID,
			Timestamp:   time.Now(),
			Payload: events.AgentAssignedPayload{
				AgentID:    agent.ID,
				PropertyID: property.ID,
			},
		}
		_ = s.dispatcher.Publish(ctx, event)
	}

	return nil
}

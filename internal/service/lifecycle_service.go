package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/repository"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

// fallbackSuspensionReason is reported when a suspension record carries no reason.
const fallbackSuspensionReason = "Account suspended by administrator"

// LifecycleService orchestrates the agent account lifecycle: invitation,
// acceptance, approval, suspension and unsuspension.
type LifecycleService struct {
	users       repository.UserRepository
	agents      repository.AgentRepository
	properties  repository.PropertyRepository
	suspensions repository.SuspensionRepository
	audit       repository.AuditLogRepository
	invites     repository.InvitationStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	bcryptCost    int
	invitationTTL time.Duration
	baseURL       string
}

// LifecycleDependencies bundles repositories for the lifecycle service.
type LifecycleDependencies struct {
	UserRepo        repository.UserRepository
	AgentRepo       repository.AgentRepository
	PropertyRepo    repository.PropertyRepository
	SuspensionRepo  repository.SuspensionRepository
	AuditRepo       repository.AuditLogRepository
	InvitationStore repository.InvitationStore
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// LifecycleOptions carries configuration knobs.
type LifecycleOptions struct {
	BcryptCost    int
	InvitationTTL time.Duration
	BaseURL       string
}

// NewLifecycleService builds the service.
func NewLifecycleService(deps LifecycleDependencies, opts LifecycleOptions) *LifecycleService {
	if opts.BcryptCost <= 0 {
		opts.BcryptCost = 12
	}
	if opts.InvitationTTL <= 0 {
		opts.InvitationTTL = 72 * time.Hour
	}
	return &LifecycleService{
		users:         deps.UserRepo,
		agents:        deps.AgentRepo,
		properties:    deps.PropertyRepo,
		suspensions:   deps.SuspensionRepo,
		audit:         deps.AuditRepo,
		invites:       deps.InvitationStore,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		bcryptCost:    opts.BcryptCost,
		invitationTTL: opts.InvitationTTL,
		baseURL:       opts.BaseURL,
	}
}

// InvitationResult reports a created invitation. TempPassword is only exposed
// to callers outside production environments.
type InvitationResult struct {
	AgentID        string
	UserID         string
	Email          string
	InvitationLink string
	TempPassword   string
}

// InviteAgent creates the identity and agent profile for an invited agent and
// issues a single-use invitation token. The profile insert has no transaction
// with the identity insert; on failure the user row is deleted best effort.
func (s *LifecycleService) InviteAgent(ctx context.Context, actorUserID, email, firstName, lastName, phone string) (*InvitationResult, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	tempPassword := uuid.NewString()
	hash, err := auth.HashPassword(tempPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.UserRoleAgent,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	agent := &domain.Agent{
		UserID:    user.ID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Active:    false,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		// Compensating delete; there is no cross-table transaction here.
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("compensating user delete failed",
				zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, apperrors.MapError(err)
	}

	token := uuid.NewString()
	invitation := &domain.Invitation{
		Token:     token,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		UserID:    user.ID,
		AgentID:   agent.ID,
		InvitedBy: actorUserID,
		State:     domain.InvitationPending,
		CreatedAt: time.Now(),
	}
	if err := s.invites.Save(ctx, invitation, s.invitationTTL); err != nil {
		return nil, apperrors.MapError(err)
	}

	link := fmt.Sprintf("%s/agents/accept?token=%s", s.baseURL, token)

	s.appendAudit(ctx, &actorUserID, domain.AuditAgentInvited, domain.AuditEntityAgent, agent.ID, map[string]any{
		"email":           email,
		"invitation_link": link,
	})

	s.publish(ctx, events.EventAgentInvited, &actorUserID, events.AgentInvitedPayload{
		Email:          email,
		InvitationLink: link,
		TempPassword:   tempPassword,
	})

	return &InvitationResult{
		AgentID:        agent.ID,
		UserID:         user.ID,
		Email:          email,
		InvitationLink: link,
		TempPassword:   tempPassword,
	}, nil
}

// AcceptInvitation consumes a single-use invitation token and sets the agent's
// chosen password. The account stays pending approval.
func (s *LifecycleService) AcceptInvitation(ctx context.Context, token, password string) (*domain.User, *domain.Agent, error) {
	invitation, err := s.invites.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return nil, nil, apperrors.NewNotFound("invitation", map[string]any{"token": token})
		}
		return nil, nil, apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, invitation.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("user", nil)
		}
		return nil, nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	agent, err := s.agents.GetByID(ctx, invitation.AgentID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	if err := s.invites.MarkState(ctx, agent.ID, domain.InvitationAccepted); err != nil {
		s.logger.Warn("failed to mark invitation accepted", zap.String("agent_id", agent.ID), zap.Error(err))
	}

	s.appendAudit(ctx, &user.ID, domain.AuditAccountCreated, domain.AuditEntityUser, user.ID, map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	s.publish(ctx, events.EventAccountCreated, &user.ID, events.AccountCreatedPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})

	return user, agent, nil
}

// Approve activates an agent. Re-approving an already active agent is a no-op
// state-wise but still appends an audit entry.
func (s *LifecycleService) Approve(ctx context.Context, actorUserID, agentID string) error {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}

	if err := s.agents.SetActive(ctx, agent.ID, true); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.users.UpdateStatus(ctx, agent.UserID, domain.UserStatusActive); err != nil {
		return apperrors.MapError(err)
	}

	if err := s.invites.MarkState(ctx, agent.ID, domain.InvitationApproved); err != nil {
		s.logger.Warn("failed to mark invitation approved", zap.String("agent_id", agent.ID), zap.Error(err))
	}

	s.appendAudit(ctx, &actorUserID, domain.AuditAgentApproved, domain.AuditEntityAgent, agent.ID, map[string]any{
		"invitation_state": string(domain.InvitationApproved),
	})

	user, err := s.users.GetByID(ctx, agent.UserID)
	email := ""
	if err == nil {
		email = user.Email
	}
	s.publish(ctx, events.EventAgentApproved, &actorUserID, events.AgentApprovedPayload{
		AgentID: agent.ID,
		Email:   email,
	})

	return nil
}

// SuspendResult describes what a suspension applied.
type SuspendResult struct {
	AgentID           string
	Days              int
	EndsAt            time.Time
	PropertiesRemoved []string
}

// Suspend deactivates an agent for a number of days. Only the identity status
// flip is fatal; the remaining steps are individually fallible and logged, so a
// success response may describe a partially applied suspension.
func (s *LifecycleService) Suspend(ctx context.Context, actorUserID, agentID, reason string, days int, notes string) (*SuspendResult, error) {
	if reason == "" {
		return nil, apperrors.NewValidationError("reason is required", nil)
	}
	if days < 1 {
		return nil, apperrors.NewValidationError("suspensionDays must be at least 1", map[string]any{"suspensionDays": days})
	}

	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}

	startsAt := time.Now()
	endsAt := startsAt.AddDate(0, 0, days)

	// Step 1: the only fatal step.
	if err := s.users.UpdateStatus(ctx, agent.UserID, domain.UserStatusSuspended); err != nil {
		return nil, apperrors.MapError(err)
	}

	// Step 2.
	if err := s.agents.SetActive(ctx, agent.ID, false); err != nil {
		s.logger.Error("suspend: failed to deactivate agent",
			zap.String("agent_id", agent.ID), zap.Error(err))
	}

	// Step 3.
	clearedIDs, err := s.properties.ClearAgent(ctx, agent.ID)
	if err != nil {
		s.logger.Error("suspend: failed to clear property assignments",
			zap.String("agent_id", agent.ID), zap.Error(err))
		clearedIDs = nil
	}

	// Step 4.
	suspension := &domain.Suspension{
		AgentID:  agent.ID,
		Reason:   reason,
		Days:     days,
		Notes:    notes,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	if err := s.suspensions.Create(ctx, suspension); err != nil {
		s.logger.Error("suspend: failed to record suspension",
			zap.String("agent_id", agent.ID), zap.Error(err))
	}
	s.appendAudit(ctx, &actorUserID, domain.AuditAgentSuspended, domain.AuditEntityAgent, agent.ID, map[string]any{
		"reason":              reason,
		"suspensionDays":      days,
		"suspensionStartDate": startsAt.Format(time.RFC3339),
		"suspensionEndDate":   endsAt.Format(time.RFC3339),
		"notes":               notes,
		"propertiesRemoved":   clearedIDs,
	})

	user, userErr := s.users.GetByID(ctx, agent.UserID)
	email := ""
	if userErr == nil {
		email = user.Email
	}
	s.publish(ctx, events.EventAgentSuspended, &actorUserID, events.AgentSuspendedPayload{
		AgentID:           agent.ID,
		Email:             email,
		Reason:            reason,
		Days:              days,
		EndsAt:            endsAt.Format(time.RFC3339),
		PropertiesCleared: clearedIDs,
	})

	return &SuspendResult{
		AgentID:           agent.ID,
		Days:              days,
		EndsAt:            endsAt,
		PropertiesRemoved: clearedIDs,
	}, nil
}

// Unsuspend reactivates a suspended agent. Property assignments cleared by the
// suspension are not restored.
func (s *LifecycleService) Unsuspend(ctx context.Context, actorUserID, agentID string) error {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, agent.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusSuspended {
		return apperrors.NewConflict("agent is not suspended", map[string]any{"agent_id": agentID})
	}

	if err := s.users.UpdateStatus(ctx, agent.UserID, domain.UserStatusActive); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.agents.SetActive(ctx, agent.ID, true); err != nil {
		return apperrors.MapError(err)
	}

	if suspension, err := s.suspensions.LatestByAgent(ctx, agent.ID); err == nil && suspension.Active() {
		if err := s.suspensions.Lift(ctx, suspension.ID); err != nil {
			s.logger.Warn("unsuspend: failed to lift suspension record",
				zap.String("suspension_id", suspension.ID), zap.Error(err))
		}
	}

	s.appendAudit(ctx, &actorUserID, domain.AuditAgentUnsuspended, domain.AuditEntityAgent, agent.ID, nil)

	s.publish(ctx, events.EventAgentUnsuspended, &actorUserID, events.AgentUnsuspendedPayload{
		AgentID: agent.ID,
		Email:   user.Email,
	})

	return nil
}

// StatusResult is the agent-facing view of their lifecycle state.
type StatusResult struct {
	Agent              *domain.Agent
	User               *domain.User
	Status             domain.AgentStatus
	Approved           bool
	Suspended          bool
	CanAccessDashboard bool
}

// Status derives the tri-state status for the calling agent.
func (s *LifecycleService) Status(ctx context.Context, userID string) (*StatusResult, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	status := domain.DeriveAgentStatus(user, agent)
	approved := status == domain.AgentStatusApproved
	suspended := status == domain.AgentStatusSuspended
	return &StatusResult{
		Agent:              agent,
		User:               user,
		Status:             status,
		Approved:           approved,
		Suspended:          suspended,
		CanAccessDashboard: approved || suspended,
	}, nil
}

// SuspensionDetails is the agent-facing view of their current suspension.
type SuspensionDetails struct {
	Suspended bool
	Reason    string
	Days      int
	StartsAt  *time.Time
	EndsAt    *time.Time
	Notes     string
}

// SuspensionDetail reports the newest suspension for the calling agent. It
// reads the explicit suspension record and falls back to the newest
// AGENT_SUSPENDED audit entry, whose details payload may be a structured
// object or a serialized string.
func (s *LifecycleService) SuspensionDetail(ctx context.Context, userID string) (*SuspensionDetails, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusSuspended {
		return &SuspensionDetails{Suspended: false}, nil
	}

	if suspension, err := s.suspensions.LatestByAgent(ctx, agent.ID); err == nil {
		reason := suspension.Reason
		if reason == "" {
			reason = fallbackSuspensionReason
		}
		start := suspension.StartsAt
		end := suspension.EndsAt
		return &SuspensionDetails{
			Suspended: true,
			Reason:    reason,
			Days:      suspension.Days,
			StartsAt:  &start,
			EndsAt:    &end,
			Notes:     suspension.Notes,
		}, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	entry, err := s.audit.LatestByAction(ctx, domain.AuditAgentSuspended, agent.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &SuspensionDetails{Suspended: true, Reason: fallbackSuspensionReason}, nil
		}
		return nil, apperrors.MapError(err)
	}
	details := parseSuspensionPayload(entry.Details)
	details.Suspended = true
	return details, nil
}

// parseSuspensionPayload extracts suspension fields from an audit details
// payload, tolerating a nested serialized-string form.
func parseSuspensionPayload(payload map[string]any) *SuspensionDetails {
	if raw, ok := payload["details"].(string); ok {
		var nested map[string]any
		if err := json.Unmarshal([]byte(raw), &nested); err == nil {
			payload = nested
		}
	}

	details := &SuspensionDetails{Reason: fallbackSuspensionReason}
	if reason, ok := payload["reason"].(string); ok && reason != "" {
		details.Reason = reason
	}
	switch days := payload["suspensionDays"].(type) {
	case float64:
		details.Days = int(days)
	case int:
		details.Days = days
	case string:
		var parsed int
		if _, err := fmt.Sscanf(days, "%d", &parsed); err == nil {
			details.Days = parsed
		}
	}
	if start, ok := payload["suspensionStartDate"].(string); ok {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			details.StartsAt = &t
		}
	}
	if end, ok := payload["suspensionEndDate"].(string); ok {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			details.EndsAt = &t
		}
	}
	if notes, ok := payload["notes"].(string); ok {
		details.Notes = notes
	}
	return details
}

func (s *LifecycleService) appendAudit(ctx context.Context, actorUserID *string, action domain.AuditAction, entityType domain.AuditEntityType, entityID string, details map[string]any) {
	entry := &domain.AuditEntry{
		ActorUserID: actorUserID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Details:     details,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("action", string(action)),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

func (s *LifecycleService) publish(ctx context.Context, eventType events.EventType, actorUserID *string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ActorUserID: actorUserID,
		Timestamp:   time.Now(),
		Payload:     payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}

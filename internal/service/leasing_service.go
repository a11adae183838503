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

// LeasingService covers leases and rent payments, including agent commission
// accrual.
type LeasingService struct {
	leases     repository.LeaseRepository
	payments   repository.PaymentRepository
	properties repository.PropertyRepository
	tenants    repository.TenantRepository
	landlords  repository.LandlordRepository
	agents     repository.AgentRepository
	audit      repository.AuditLogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// LeasingDependencies bundles repositories.
type LeasingDependencies struct {
	LeaseRepo    repository.LeaseRepository
	PaymentRepo  repository.PaymentRepository
	PropertyRepo repository.PropertyRepository
	TenantRepo   repository.TenantRepository
	LandlordRepo repository.LandlordRepository
	AgentRepo    repository.AgentRepository
	AuditRepo    repository.AuditLogRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewLeasingService creates the service.
func NewLeasingService(deps LeasingDependencies) *LeasingService {
	return &LeasingService{
		leases:     deps.LeaseRepo,
		payments:   deps.PaymentRepo,
		properties: deps.PropertyRepo,
		tenants:    deps.TenantRepo,
		landlords:  deps.LandlordRepo,
		agents:     deps.AgentRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// LeaseInput carries lease creation fields.
type LeaseInput struct {
	PropertyID  string
	TenantID    string
	StartDate   time.Time
	EndDate     time.Time
	MonthlyRent float64
}

// CreateLease binds a tenant to a property the calling landlord owns and
// marks the property rented.
func (s *LeasingService) CreateLease(ctx context.Context, landlordUserID string, input LeaseInput) (*domain.Lease, error) {
	landlord, err := s.landlords.GetByUserID(ctx, landlordUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("landlord", nil)
		}
		return nil, apperrors.MapError(err)
	}

	property, err := s.properties.GetByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_id": input.PropertyID})
		}
		return nil, apperrors.MapError(err)
	}
	if property.LandlordID != landlord.ID {
		return nil, apperrors.NewNotFound("property", map[string]any{"property_id": input.PropertyID})
	}

	tenant, err := s.tenants.GetByID(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tenant", map[string]any{"tenant_id": input.TenantID})
		}
		return nil, apperrors.MapError(err)
	}

	rent := input.MonthlyRent
	if rent <= 0 {
		rent = property.Rent
	}
	lease := &domain.Lease{
		PropertyID:  property.ID,
		TenantID:    tenant.ID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		MonthlyRent: rent,
		Status:      domain.LeaseStatusActive,
	}
	if err := s.leases.Create(ctx, lease); err != nil {
		return nil, apperrors.MapError(err)
	}

	property.Status = domain.PropertyStatusRented
	if err := s.properties.Update(ctx, property); err != nil {
		s.logger.Error("lease: failed to mark property rented",
			zap.String("property_id", property.ID), zap.Error(err))
	}

	tenant.PropertyID = &property.ID
	if err := s.tenants.Update(ctx, tenant); err != nil {
		s.logger.Error("lease: failed to link tenant to property",
			zap.String("tenant_id", tenant.ID), zap.Error(err))
	}

	return lease, nil
}

// PaymentResult reports a recorded payment and the commission it accrued.
type PaymentResult struct {
	Payment    *domain.Payment
	Commission float64
}

// RecordPayment stores a rent payment against a lease on a property the
// calling landlord owns. When the property has an active agent with a
// commission rate, the agent earns rate percent of the amount.
func (s *LeasingService) RecordPayment(ctx context.Context, landlordUserID, leaseID string, amount float64, method domain.PaymentMethod) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", map[string]any{"amount": amount})
	}

	landlord, err := s.landlords.GetByUserID(ctx, landlordUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("landlord", nil)
		}
		return nil, apperrors.MapError(err)
	}

	lease, err := s.leases.GetByID(ctx, leaseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lease", map[string]any{"lease_id": leaseID})
		}
		return nil, apperrors.MapError(err)
	}

	property, err := s.properties.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if property.LandlordID != landlord.ID {
		return nil, apperrors.NewNotFound("lease", map[string]any{"lease_id": leaseID})
	}

	payment := &domain.Payment{
		LeaseID: lease.ID,
		Amount:  amount,
		Method:  method,
		PaidAt:  time.Now(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperrors.MapError(err)
	}

	commission := s.accrueCommission(ctx, property, amount)

	entry := &domain.AuditEntry{
		ActorUserID: &landlordUserID,
		Action:      domain.AuditPaymentRecorded,
		EntityType:  domain.AuditEntityLease,
		EntityID:    lease.ID,
		Details: map[string]any{
			"amount":     amount,
			"commission": commission,
		},
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("action", string(domain.AuditPaymentRecorded)),
			zap.String("lease_id", lease.ID),
			zap.Error(err))
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventPaymentRecorded,
			ActorUserID: &landlordUserID,
			Timestamp:   time.Now(),
			Payload: events.PaymentRecordedPayload{
				LeaseID:    lease.ID,
				Amount:     amount,
				Commission: commission,
			},
		}
		_ = s.dispatcher.Publish(ctx, event)
	}

	return &PaymentResult{Payment: payment, Commission: commission}, nil
}

// accrueCommission adds the agent's cut onto total_earnings. Failure to accrue
// is logged, not propagated; the payment itself already succeeded.
func (s *LeasingService) accrueCommission(ctx context.Context, property *domain.Property, amount float64) float64 {
	if property.AgentID == nil {
		return 0
	}
	agent, err := s.agents.GetByID(ctx, *property.AgentID)
	if err != nil || !agent.Active || agent.CommissionRate == nil {
		return 0
	}
	commission := amount * (*agent.CommissionRate) / 100
	if commission <= 0 {
		return 0
	}
	if err := s.agents.AddEarnings(ctx, agent.ID, commission); err != nil {
		s.logger.Error("payment: failed to accrue commission",
			zap.String("agent_id", agent.ID), zap.Error(err))
		return 0
	}
	return commission
}

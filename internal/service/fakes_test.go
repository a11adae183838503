package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/repository"
)

// In-memory repository fakes. Each fake keeps rows in insertion order and
// returns pgx.ErrNoRows for misses, matching the behavior of the Postgres
// implementations. err* fields allow injecting failures per method.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User

	errCreate error
	errDelete error
	errStatus error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	if r.errStatus != nil {
		return r.errStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Status = status
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if r.errDelete != nil {
		return r.errDelete
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAgentRepo struct {
	mu     sync.Mutex
	agents map[string]*domain.Agent

	errCreate    error
	errSetActive error
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{agents: make(map[string]*domain.Agent)}
}

func (r *fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	agent.ID = uuid.NewString()
	agent.JoinedAt = time.Now()
	clone := *agent
	r.agents[agent.ID] = &clone
	return nil
}

func (r *fakeAgentRepo) Update(_ context.Context, agent *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agent.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *agent
	r.agents[agent.ID] = &clone
	return nil
}

func (r *fakeAgentRepo) SetActive(_ context.Context, id string, active bool) error {
	if r.errSetActive != nil {
		return r.errSetActive
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.Active = active
	return nil
}

func (r *fakeAgentRepo) SetCommissionRate(_ context.Context, id string, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.CommissionRate = &rate
	return nil
}

func (r *fakeAgentRepo) AddEarnings(_ context.Context, id string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.TotalEarnings += amount
	return nil
}

func (r *fakeAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *agent
	return &clone, nil
}

func (r *fakeAgentRepo) GetByUserID(_ context.Context, userID string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, agent := range r.agents {
		if agent.UserID == userID {
			clone := *agent
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAgentRepo) List(_ context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Agent
	for _, agent := range r.agents {
		if filter.Active != nil && agent.Active != *filter.Active {
			continue
		}
		result = append(result, *agent)
	}
	return result, nil
}

type fakePropertyRepo struct {
	mu         sync.Mutex
	order      []string
	properties map[string]*domain.Property

	errClearAgent error
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[string]*domain.Property)}
}

func (r *fakePropertyRepo) Create(_ context.Context, property *domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property.ID = uuid.NewString()
	clone := *property
	r.properties[property.ID] = &clone
	r.order = append(r.order, property.ID)
	return nil
}

func (r *fakePropertyRepo) Update(_ context.Context, property *domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[property.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *property
	r.properties[property.ID] = &clone
	return nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.properties, id)
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id string) (*domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *property
	return &clone, nil
}

func (r *fakePropertyRepo) ListWithFilter(_ context.Context, filter repository.PropertyFilter) ([]domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Property
	for _, id := range r.order {
		property, ok := r.properties[id]
		if !ok {
			continue
		}
		if filter.LandlordID != nil && property.LandlordID != *filter.LandlordID {
			continue
		}
		if filter.AgentID != nil && (property.AgentID == nil || *property.AgentID != *filter.AgentID) {
			continue
		}
		result = append(result, *property)
	}
	return result, nil
}

func (r *fakePropertyRepo) AssignAgent(_ context.Context, propertyID, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[propertyID]
	if !ok {
		return pgx.ErrNoRows
	}
	property.AgentID = &agentID
	return nil
}

func (r *fakePropertyRepo) ClearAgent(_ context.Context, agentID string) ([]string, error) {
	if r.errClearAgent != nil {
		return nil, r.errClearAgent
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared []string
	for _, id := range r.order {
		property := r.properties[id]
		if property != nil && property.AgentID != nil && *property.AgentID == agentID {
			property.AgentID = nil
			cleared = append(cleared, id)
		}
	}
	return cleared, nil
}

type fakeSuspensionRepo struct {
	mu          sync.Mutex
	suspensions []*domain.Suspension

	errCreate error
}

func newFakeSuspensionRepo() *fakeSuspensionRepo {
	return &fakeSuspensionRepo{}
}

func (r *fakeSuspensionRepo) Create(_ context.Context, suspension *domain.Suspension) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	suspension.ID = uuid.NewString()
	suspension.CreatedAt = time.Now()
	clone := *suspension
	r.suspensions = append(r.suspensions, &clone)
	return nil
}

func (r *fakeSuspensionRepo) Lift(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, suspension := range r.suspensions {
		if suspension.ID == id && suspension.LiftedAt == nil {
			now := time.Now()
			suspension.LiftedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeSuspensionRepo) LatestByAgent(_ context.Context, agentID string) (*domain.Suspension, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.suspensions) - 1; i >= 0; i-- {
		if r.suspensions[i].AgentID == agentID {
			clone := *r.suspensions[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, entityType domain.AuditEntityType, entityID string) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (r *fakeAuditRepo) LatestByAction(_ context.Context, action domain.AuditAction, entityID string) (*domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Action == action && r.entries[i].EntityID == entityID {
			clone := *r.entries[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAuditRepo) byAction(action domain.AuditAction) []*domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*domain.AuditEntry
	for _, entry := range r.entries {
		if entry.Action == action {
			result = append(result, entry)
		}
	}
	return result
}

type fakeInvitationStore struct {
	mu          sync.Mutex
	invitations map[string]*domain.Invitation
	states      map[string]domain.InvitationState
}

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{
		invitations: make(map[string]*domain.Invitation),
		states:      make(map[string]domain.InvitationState),
	}
}

func (s *fakeInvitationStore) Save(_ context.Context, invitation *domain.Invitation, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *invitation
	s.invitations[invitation.Token] = &clone
	s.states[invitation.AgentID] = invitation.State
	return nil
}

func (s *fakeInvitationStore) GetByToken(_ context.Context, token string) (*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invitation, ok := s.invitations[token]
	if !ok {
		return nil, repository.ErrInvitationNotFound
	}
	clone := *invitation
	return &clone, nil
}

func (s *fakeInvitationStore) Consume(_ context.Context, token string) (*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invitation, ok := s.invitations[token]
	if !ok {
		return nil, repository.ErrInvitationNotFound
	}
	delete(s.invitations, token)
	clone := *invitation
	return &clone, nil
}

func (s *fakeInvitationStore) MarkState(_ context.Context, agentID string, state domain.InvitationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[agentID] = state
	return nil
}

func (s *fakeInvitationStore) GetState(_ context.Context, agentID string) (domain.InvitationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[agentID]
	if !ok {
		return "", repository.ErrInvitationNotFound
	}
	return state, nil
}

type fakeLandlordRepo struct {
	mu        sync.Mutex
	landlords map[string]*domain.Landlord

	errCreate error
}

func newFakeLandlordRepo() *fakeLandlordRepo {
	return &fakeLandlordRepo{landlords: make(map[string]*domain.Landlord)}
}

func (r *fakeLandlordRepo) Create(_ context.Context, landlord *domain.Landlord) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	landlord.ID = uuid.NewString()
	clone := *landlord
	r.landlords[landlord.ID] = &clone
	return nil
}

func (r *fakeLandlordRepo) Update(_ context.Context, landlord *domain.Landlord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.landlords[landlord.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *landlord
	r.landlords[landlord.ID] = &clone
	return nil
}

func (r *fakeLandlordRepo) GetByID(_ context.Context, id string) (*domain.Landlord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	landlord, ok := r.landlords[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *landlord
	return &clone, nil
}

func (r *fakeLandlordRepo) GetByUserID(_ context.Context, userID string) (*domain.Landlord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, landlord := range r.landlords {
		if landlord.UserID == userID {
			clone := *landlord
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]*domain.Tenant

	errCreate error
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[string]*domain.Tenant)}
}

func (r *fakeTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	if r.errCreate != nil {
		return r.errCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant.ID = uuid.NewString()
	clone := *tenant
	r.tenants[tenant.ID] = &clone
	return nil
}

func (r *fakeTenantRepo) Update(_ context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *tenant
	r.tenants[tenant.ID] = &clone
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *tenant
	return &clone, nil
}

func (r *fakeTenantRepo) GetByUserID(_ context.Context, userID string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tenant := range r.tenants {
		if tenant.UserID == userID {
			clone := *tenant
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakePasswordResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
}

func newFakePasswordResetRepo() *fakePasswordResetRepo {
	return &fakePasswordResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (r *fakePasswordResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *fakePasswordResetRepo) GetByTokenHash(_ context.Context, tokenHash string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			clone := *token
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePasswordResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

type fakeLeaseRepo struct {
	mu     sync.Mutex
	leases map[string]*domain.Lease
}

func newFakeLeaseRepo() *fakeLeaseRepo {
	return &fakeLeaseRepo{leases: make(map[string]*domain.Lease)}
}

func (r *fakeLeaseRepo) Create(_ context.Context, lease *domain.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lease.ID = uuid.NewString()
	clone := *lease
	r.leases[lease.ID] = &clone
	return nil
}

func (r *fakeLeaseRepo) UpdateStatus(_ context.Context, id string, status domain.LeaseStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lease, ok := r.leases[id]
	if !ok {
		return pgx.ErrNoRows
	}
	lease.Status = status
	return nil
}

func (r *fakeLeaseRepo) GetByID(_ context.Context, id string) (*domain.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lease, ok := r.leases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *lease
	return &clone, nil
}

func (r *fakeLeaseRepo) ListByProperty(_ context.Context, propertyID string) ([]domain.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Lease
	for _, lease := range r.leases {
		if lease.PropertyID == propertyID {
			result = append(result, *lease)
		}
	}
	return result, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now()
	clone := *payment
	r.payments = append(r.payments, &clone)
	return nil
}

func (r *fakePaymentRepo) ListByLease(_ context.Context, leaseID string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Payment
	for _, payment := range r.payments {
		if payment.LeaseID == leaseID {
			result = append(result, *payment)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) SumByLease(_ context.Context, leaseID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, payment := range r.payments {
		if payment.LeaseID == leaseID {
			sum += payment.Amount
		}
	}
	return sum, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

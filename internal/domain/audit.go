package domain

import "time"

// AuditAction identifies a lifecycle action in the audit trail.
type AuditAction string

const (
	AuditAgentInvited           AuditAction = "AGENT_INVITED"
	AuditAccountCreated         AuditAction = "ACCOUNT_CREATED"
	AuditAgentApproved          AuditAction = "AGENT_APPROVED"
	AuditAgentAssigned          AuditAction = "AGENT_ASSIGNED"
	AuditAgentSuspended         AuditAction = "AGENT_SUSPENDED"
	AuditAgentUnsuspended       AuditAction = "AGENT_UNSUSPENDED"
	AuditPasswordResetRequested AuditAction = "PASSWORD_RESET_REQUESTED"
	AuditPaymentRecorded        AuditAction = "PAYMENT_RECORDED"
)

// AuditEntityType names the entity an audit entry refers to.
type AuditEntityType string

const (
	AuditEntityUser     AuditEntityType = "USER"
	AuditEntityAgent    AuditEntityType = "AGENT"
	AuditEntityProperty AuditEntityType = "PROPERTY"
	AuditEntityLease    AuditEntityType = "LEASE"
)

// AuditEntry is an immutable lifecycle event. Details is a free-form payload;
// historical entries may carry it as a serialized string rather than an object.
type AuditEntry struct {
	ID          string
	ActorUserID *string
	Action      AuditAction
	EntityType  AuditEntityType
	EntityID    string
	Details     map[string]any
	CreatedAt   time.Time
}

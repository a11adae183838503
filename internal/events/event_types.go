package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAgentInvited     EventType = "agent_invited"
	EventAccountCreated   EventType = "account_created"
	EventAgentApproved    EventType = "agent_approved"
	EventAgentAssigned    EventType = "agent_assigned"
	EventAgentSuspended   EventType = "agent_suspended"
	EventAgentUnsuspended EventType = "agent_unsuspended"
	EventPasswordReset    EventType = "password_reset_requested"
	EventPaymentRecorded  EventType = "payment_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ActorUserID *string     `json:"actor_user_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// AgentInvitedPayload payload.
type AgentInvitedPayload struct {
	Email          string `json:"email"`
	InvitationLink string `json:"invitation_link"`
	TempPassword   string `json:"temp_password"`
}

// AccountCreatedPayload payload.
type AccountCreatedPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// AgentApprovedPayload payload.
type AgentApprovedPayload struct {
	AgentID string `json:"agent_id"`
	Email   string `json:"email"`
}

// AgentAssignedPayload payload.
type AgentAssignedPayload struct {
	AgentID    string `json:"agent_id"`
	PropertyID string `json:"property_id"`
}

// AgentSuspendedPayload payload.
type AgentSuspendedPayload struct {
	AgentID           string   `json:"agent_id"`
	Email             string   `json:"email"`
	Reason            string   `json:"reason"`
	Days              int      `json:"days"`
	EndsAt            string   `json:"ends_at"`
	PropertiesCleared []string `json:"properties_cleared"`
}

// AgentUnsuspendedPayload payload.
type AgentUnsuspendedPayload struct {
	AgentID string `json:"agent_id"`
	Email   string `json:"email"`
}

// PasswordResetPayload payload.
type PasswordResetPayload struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	LeaseID    string  `json:"lease_id"`
	Amount     float64 `json:"amount"`
	Commission float64 `json:"commission"`
}

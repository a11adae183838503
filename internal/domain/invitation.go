package domain

import "time"

// InvitationState tracks how far an agent invitation has progressed.
type InvitationState string

const (
	InvitationPending  InvitationState = "PENDING"
	InvitationAccepted InvitationState = "ACCEPTED"
	InvitationApproved InvitationState = "APPROVED"
)

// Invitation is a single-use, TTL-bounded agent invite.
type Invitation struct {
	Token     string          `json:"token"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Phone     string          `json:"phone"`
	UserID    string          `json:"user_id"`
	AgentID   string          `json:"agent_id"`
	InvitedBy string          `json:"invited_by"`
	State     InvitationState `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
}

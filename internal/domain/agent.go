package domain

import "time"

// AgentStatus is the derived tri-state reported to agents.
type AgentStatus string

const (
	AgentStatusPendingApproval AgentStatus = "PENDING_APPROVAL"
	AgentStatusApproved        AgentStatus = "APPROVED"
	AgentStatusSuspended       AgentStatus = "SUSPENDED"
)

// Agent is the role profile for property-management agents, linked 1:1 to a User.
type Agent struct {
	ID             string
	UserID         string
	FirstName      string
	LastName       string
	Phone          string
	Active         bool
	CommissionRate *float64
	TotalEarnings  float64
	JoinedAt       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DeriveAgentStatus computes the agent-facing status from identity and profile state.
// A suspended agent keeps dashboard visibility; write actions are gated elsewhere.
func DeriveAgentStatus(user *User, agent *Agent) AgentStatus {
	if user.Status == UserStatusSuspended {
		return AgentStatusSuspended
	}
	if agent.Active && user.Status == UserStatusActive {
		return AgentStatusApproved
	}
	return AgentStatusPendingApproval
}

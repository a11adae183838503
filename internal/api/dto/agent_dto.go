package dto

// AgentInviteRequest payload for POST /admin/agents/invite.
type AgentInviteRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
}

// AgentAcceptRequest payload for redeeming an invitation.
type AgentAcceptRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// AgentApproveRequest payload for POST /landlord/agents/approve.
type AgentApproveRequest struct {
	AgentID      string `json:"agentId" validate:"required"`
	InvitationID string `json:"invitationId"`
}

// AgentAssignRequest payload for POST /landlord/agents/assign.
type AgentAssignRequest struct {
	AgentID        string   `json:"agentId" validate:"required"`
	PropertyID     string   `json:"propertyId" validate:"required"`
	CommissionRate *float64 `json:"commissionRate" validate:"omitempty,gte=0,lte=100"`
}

// AgentSuspendRequest payload for POST /landlord/agents/remove.
type AgentSuspendRequest struct {
	AgentID        string `json:"agentId" validate:"required"`
	Reason         string `json:"reason" validate:"required"`
	SuspensionDays int    `json:"suspensionDays" validate:"required,min=1"`
	Notes          string `json:"notes"`
}

// AgentUnsuspendRequest payload for POST /landlord/agents/unsuspend.
type AgentUnsuspendRequest struct {
	AgentID string `json:"agentId" validate:"required"`
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/estatedesk/estate-service/internal/api/dto"
	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/service"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

// AgentsHandler exposes the agent lifecycle endpoints.
type AgentsHandler struct {
	lifecycle   *service.LifecycleService
	assignments *service.AssignmentService
	authService *service.AuthService
	exposeTemp  bool
}

// NewAgentsHandler constructs handler. exposeTempCredential should be false in
// production: the generated temporary password is then omitted from responses.
func NewAgentsHandler(lifecycle *service.LifecycleService, assignments *service.AssignmentService, authService *service.AuthService, exposeTempCredential bool) *AgentsHandler {
	return &AgentsHandler{
		lifecycle:   lifecycle,
		assignments: assignments,
		authService: authService,
		exposeTemp:  exposeTempCredential,
	}
}

// Invite handles POST /admin/agents/invite.
func (h *AgentsHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AgentInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.lifecycle.InviteAgent(c.Context(), principal.User.ID, req.Email, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		return err
	}

	response := fiber.Map{
		"invitationLink": result.InvitationLink,
		"email":          result.Email,
		"agentId":        result.AgentID,
	}
	if h.exposeTemp {
		response["tempPassword"] = result.TempPassword
	}
	return c.Status(http.StatusCreated).JSON(response)
}

// Accept handles POST /auth/agents/accept.
func (h *AgentsHandler) Accept(c *fiber.Ctx) error {
	var req dto.AgentAcceptRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, agent, err := h.lifecycle.AcceptInvitation(c.Context(), req.Token, req.Password)
	if err != nil {
		return err
	}

	token, exp, err := h.authService.IssueToken(user)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":  userSummary(user),
			"agent": agentSummary(agent),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Approve handles POST /landlord/agents/approve.
func (h *AgentsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AgentApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.lifecycle.Approve(c.Context(), principal.User.ID, req.AgentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "agent approved",
		"agentId": req.AgentID,
	})
}

// Assign handles POST /landlord/agents/assign.
func (h *AgentsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AgentAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.assignments.AssignAgent(c.Context(), principal.User.ID, req.PropertyID, req.AgentID, req.CommissionRate); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "agent assigned",
		"agentId":    req.AgentID,
		"propertyId": req.PropertyID,
	})
}

// Suspend handles POST /landlord/agents/remove.
func (h *AgentsHandler) Suspend(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AgentSuspendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.lifecycle.Suspend(c.Context(), principal.User.ID, req.AgentID, req.Reason, req.SuspensionDays, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":           "agent suspended",
		"agentId":           result.AgentID,
		"suspensionDays":    result.Days,
		"suspensionEndDate": result.EndsAt.Format(time.RFC3339),
		"propertiesRemoved": result.PropertiesRemoved,
	})
}

// Unsuspend handles POST /landlord/agents/unsuspend.
func (h *AgentsHandler) Unsuspend(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AgentUnsuspendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.lifecycle.Unsuspend(c.Context(), principal.User.ID, req.AgentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "agent unsuspended",
		"agentId": req.AgentID,
	})
}

// Status handles GET /agent/status.
func (h *AgentsHandler) Status(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	result, err := h.lifecycle.Status(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"agent":              agentSummary(result.Agent),
		"user":               userSummary(result.User),
		"approved":           result.Approved,
		"suspended":          result.Suspended,
		"status":             result.Status,
		"canAccessDashboard": result.CanAccessDashboard,
	})
}

// SuspensionDetail handles GET /agent/suspension.
func (h *AgentsHandler) SuspensionDetail(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	details, err := h.lifecycle.SuspensionDetail(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	response := fiber.Map{"suspended": details.Suspended}
	if details.Suspended {
		response["reason"] = details.Reason
		response["suspensionDays"] = details.Days
		response["notes"] = details.Notes
		if details.StartsAt != nil {
			response["suspensionStartDate"] = details.StartsAt.Format(time.RFC3339)
		}
		if details.EndsAt != nil {
			response["suspensionEndDate"] = details.EndsAt.Format(time.RFC3339)
		}
	}
	return c.JSON(response)
}

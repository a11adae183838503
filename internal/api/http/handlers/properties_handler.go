package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/estatedesk/estate-service/internal/api/dto"
	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/service"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

const dateLayout = "2006-01-02"

// PropertiesHandler exposes property, lease and payment endpoints.
type PropertiesHandler struct {
	properties *service.PropertyService
	leasing    *service.LeasingService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(properties *service.PropertyService, leasing *service.LeasingService) *PropertiesHandler {
	return &PropertiesHandler{properties: properties, leasing: leasing}
}

// Create handles POST /landlord/properties.
func (h *PropertiesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	property, err := h.properties.Create(c.Context(), principal.User.ID, propertyInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(propertyResponse(property))
}

// List handles GET /landlord/properties.
func (h *PropertiesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	result, err := h.properties.ListForLandlord(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"properties": propertyList(result)})
}

// Get handles GET /landlord/properties/:id.
func (h *PropertiesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	property, err := h.properties.Get(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(propertyResponse(property))
}

// Update handles PUT /landlord/properties/:id.
func (h *PropertiesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	property, err := h.properties.Update(c.Context(), principal.User.ID, c.Params("id"), propertyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(propertyResponse(property))
}

// Delete handles DELETE /landlord/properties/:id.
func (h *PropertiesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.properties.Delete(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "property deleted"})
}

// ListForAgent handles GET /agent/properties.
func (h *PropertiesHandler) ListForAgent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	result, err := h.properties.ListForAgent(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"properties": propertyList(result)})
}

// CreateLease handles POST /landlord/leases.
func (h *PropertiesHandler) CreateLease(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.LeaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return apperrors.NewValidationError("invalid startDate", map[string]any{"startDate": req.StartDate})
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return apperrors.NewValidationError("invalid endDate", map[string]any{"endDate": req.EndDate})
	}
	if !end.After(start) {
		return apperrors.NewValidationError("endDate must be after startDate", nil)
	}

	lease, err := h.leasing.CreateLease(c.Context(), principal.User.ID, service.LeaseInput{
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		StartDate:   start,
		EndDate:     end,
		MonthlyRent: req.MonthlyRent,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":          lease.ID,
		"propertyId":  lease.PropertyID,
		"tenantId":    lease.TenantID,
		"startDate":   lease.StartDate.Format(dateLayout),
		"endDate":     lease.EndDate.Format(dateLayout),
		"monthlyRent": lease.MonthlyRent,
		"status":      lease.Status,
	})
}

// RecordPayment handles POST /landlord/payments.
func (h *PropertiesHandler) RecordPayment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	method := domain.PaymentMethod(req.Method)
	if method == "" {
		method = domain.PaymentMethodBankTransfer
	}

	result, err := h.leasing.RecordPayment(c.Context(), principal.User.ID, req.LeaseID, req.Amount, method)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         result.Payment.ID,
		"leaseId":    result.Payment.LeaseID,
		"amount":     result.Payment.Amount,
		"method":     result.Payment.Method,
		"paidAt":     result.Payment.PaidAt,
		"commission": result.Commission,
	})
}

func propertyInput(req dto.PropertyRequest) service.PropertyInput {
	return service.PropertyInput{
		Title:     req.Title,
		Address:   req.Address,
		City:      req.City,
		Rent:      req.Rent,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Status:    domain.PropertyStatus(req.Status),
	}
}

func propertyList(properties []domain.Property) []fiber.Map {
	result := make([]fiber.Map, 0, len(properties))
	for i := range properties {
		result = append(result, propertyResponse(&properties[i]))
	}
	return result
}

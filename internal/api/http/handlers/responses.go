package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/estatedesk/estate-service/internal/api/dto"
	"github.com/estatedesk/estate-service/internal/domain"
)

func userSummary(user *domain.User) fiber.Map {
	return fiber.Map{
		"id":     user.ID,
		"email":  user.Email,
		"role":   user.Role,
		"status": user.Status,
	}
}

func agentSummary(agent *domain.Agent) fiber.Map {
	return fiber.Map{
		"id":             agent.ID,
		"userId":         agent.UserID,
		"firstName":      agent.FirstName,
		"lastName":       agent.LastName,
		"phone":          agent.Phone,
		"active":         agent.Active,
		"commissionRate": agent.CommissionRate,
		"totalEarnings":  agent.TotalEarnings,
		"joinedAt":       agent.JoinedAt,
	}
}

func propertyResponse(property *domain.Property) fiber.Map {
	return fiber.Map{
		"id":         property.ID,
		"landlordId": property.LandlordID,
		"agentId":    property.AgentID,
		"title":      property.Title,
		"address":    property.Address,
		"city":       property.City,
		"rent":       property.Rent,
		"bedrooms":   property.Bedrooms,
		"bathrooms":  property.Bathrooms,
		"status":     property.Status,
		"createdAt":  property.CreatedAt,
		"updatedAt":  property.UpdatedAt,
	}
}

func registered(c *fiber.Ctx, user *domain.User, token string, exp time.Time) error {
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userSummary(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

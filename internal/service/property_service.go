package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/estatedesk/estate-service/internal/domain"
	"github.com/estatedesk/estate-service/internal/repository"
	apperrors "github.com/estatedesk/estate-service/pkg/util"
)

// PropertyService covers the landlord-facing property CRUD surface.
type PropertyService struct {
	properties repository.PropertyRepository
	landlords  repository.LandlordRepository
	agents     repository.AgentRepository
}

// NewPropertyService creates the service.
func NewPropertyService(properties repository.PropertyRepository, landlords repository.LandlordRepository, agents repository.AgentRepository) *PropertyService {
	return &PropertyService{properties: properties, landlords: landlords, agents: agents}
}

// PropertyInput carries create/update fields.
type PropertyInput struct {
	Title     string
	Address   string
	City      string
	Rent      float64
	Bedrooms  int
	Bathrooms int
	Status    domain.PropertyStatus
}

// Create adds a listing owned by the calling landlord.
func (s *PropertyService) Create(ctx context.Context, landlordUserID string, input PropertyInput) (*domain.Property, error) {
	landlord, err := s.landlordByUser(ctx, landlordUserID)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.PropertyStatusAvailable
	}
	property := &domain.Property{
		LandlordID: landlord.ID,
		Title:      input.Title,
		Address:    input.Address,
		City:       input.City,
		Rent:       input.Rent,
		Bedrooms:   input.Bedrooms,
		Bathrooms:  input.Bathrooms,
		Status:     status,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, apperrors.MapError(err)
	}
	return property, nil
}

// Update modifies an owned listing.
func (s *PropertyService) Update(ctx context.Context, landlordUserID, propertyID string, input PropertyInput) (*domain.Property, error) {
	property, err := s.ownedProperty(ctx, landlordUserID, propertyID)
	if err != nil {
		return nil, err
	}

	property.Title = input.Title
	property.Address = input.Address
	property.City = input.City
	property.Rent = input.Rent
	property.Bedrooms = input.Bedrooms
	property.Bathrooms = input.Bathrooms
	if input.Status != "" {
		property.Status = input.Status
	}
	if err := s.properties.Update(ctx, property); err != nil {
		return nil, apperrors.MapError(err)
	}
	return property, nil
}

// Delete removes an owned listing.
func (s *PropertyService) Delete(ctx context.Context, landlordUserID, propertyID string) error {
	property, err := s.ownedProperty(ctx, landlordUserID, propertyID)
	if err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, property.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Get returns an owned listing.
func (s *PropertyService) Get(ctx context.Context, landlordUserID, propertyID string) (*domain.Property, error) {
	return s.ownedProperty(ctx, landlordUserID, propertyID)
}

// ListForLandlord returns the calling landlord's listings.
func (s *PropertyService) ListForLandlord(ctx context.Context, landlordUserID string, limit, offset int) ([]domain.Property, error) {
	landlord, err := s.landlordByUser(ctx, landlordUserID)
	if err != nil {
		return nil, err
	}
	result, err := s.properties.ListWithFilter(ctx, repository.PropertyFilter{
		LandlordID: &landlord.ID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// ListForAgent returns the listings assigned to the calling agent.
func (s *PropertyService) ListForAgent(ctx context.Context, agentUserID string, limit, offset int) ([]domain.Property, error) {
	agent, err := s.agents.GetByUserID(ctx, agentUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", nil)
		}
		return nil, apperrors.MapError(err)
	}
	result, err := s.properties.ListWithFilter(ctx, repository.PropertyFilter{
		AgentID: &agent.ID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *PropertyService) landlordByUser(ctx context.Context, userID string) (*domain.Landlord, error) {
	landlord, err := s.landlords.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("landlord", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return landlord, nil
}

func (s *PropertyService) ownedProperty(ctx context.Context, landlordUserID, propertyID string) (*domain.Property, error) {
	landlord, err := s.landlordByUser(ctx, landlordUserID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_id": propertyID})
		}
		return nil, apperrors.MapError(err)
	}
	if property.LandlordID != landlord.ID {
		return nil, apperrors.NewNotFound("property", map[string]any{"property_id": propertyID})
	}
	return property, nil
}

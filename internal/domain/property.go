package domain

import "time"

// PropertyStatus enumerates listing states.
type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "AVAILABLE"
	PropertyStatusRented      PropertyStatus = "RENTED"
	PropertyStatusMaintenance PropertyStatus = "MAINTENANCE"
)

// Property is a landlord-owned listing, optionally managed by an agent.
type Property struct {
	ID         string
	LandlordID string
	AgentID    *string
	Title      string
	Address    string
	City       string
	Rent       float64
	Bedrooms   int
	Bathrooms  int
	Status     PropertyStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

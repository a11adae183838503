package domain

import "time"

// Landlord is the role profile for property owners.
type Landlord struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tenant is the role profile for renters.
type Tenant struct {
	ID         string
	UserID     string
	FirstName  string
	LastName   string
	Phone      string
	PropertyID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

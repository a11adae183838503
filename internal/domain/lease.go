package domain

import "time"

// LeaseStatus enumerates lease lifecycle states.
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "ACTIVE"
	LeaseStatusEnded      LeaseStatus = "ENDED"
	LeaseStatusTerminated LeaseStatus = "TERMINATED"
)

// Lease binds a tenant to a property for a period at a monthly rent.
type Lease struct {
	ID          string
	PropertyID  string
	TenantID    string
	StartDate   time.Time
	EndDate     time.Time
	MonthlyRent float64
	Status      LeaseStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentMethod enumerates how rent was paid.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
)

// Payment records a rent payment against a lease.
type Payment struct {
	ID        string
	LeaseID   string
	Amount    float64
	Method    PaymentMethod
	PaidAt    time.Time
	CreatedAt time.Time
}

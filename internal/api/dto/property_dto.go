package dto

// PropertyRequest payload for property create/update.
type PropertyRequest struct {
	Title     string  `json:"title" validate:"required"`
	Address   string  `json:"address" validate:"required"`
	City      string  `json:"city" validate:"required"`
	Rent      float64 `json:"rent" validate:"required,gt=0"`
	Bedrooms  int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms int     `json:"bathrooms" validate:"gte=0"`
	Status    string  `json:"status" validate:"omitempty,oneof=AVAILABLE RENTED MAINTENANCE"`
}

// LeaseRequest payload for lease creation.
type LeaseRequest struct {
	PropertyID  string  `json:"propertyId" validate:"required"`
	TenantID    string  `json:"tenantId" validate:"required"`
	StartDate   string  `json:"startDate" validate:"required"`
	EndDate     string  `json:"endDate" validate:"required"`
	MonthlyRent float64 `json:"monthlyRent" validate:"omitempty,gt=0"`
}

// PaymentRequest payload for recording a rent payment.
type PaymentRequest struct {
	LeaseID string  `json:"leaseId" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Method  string  `json:"method" validate:"omitempty,oneof=BANK_TRANSFER CARD CASH"`
}

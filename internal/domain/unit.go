package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	UnitStatusAvailable   = "available"
	UnitStatusOccupied    = "occupied"
	UnitStatusMaintenance = "maintenance"
	UnitStatusReserved    = "reserved"
)

// Unit is a rentable space inside a property. Only its status takes part in the lease lifecycle.
type Unit struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	PropertyID uuid.UUID       `json:"property_id" db:"property_id"`
	UnitNumber string          `json:"unit_number" db:"unit_number"`
	RentPrice  decimal.Decimal `json:"rent_price" db:"rent_price"`
	Status     string          `json:"status" db:"status"`
	Type       *string         `json:"type,omitempty" db:"type"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Release puts the unit back on the market
func (u *Unit) Release(now time.Time) {
	u.Status = UnitStatusAvailable
	u.UpdatedAt = now
}

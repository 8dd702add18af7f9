package supplier

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a vendor the business purchases stock from.
type Supplier struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	LeadTimeDays int       `json:"lead_time_days"`
	PaymentTerms string    `json:"payment_terms"`
	MinOrderQty  int       `json:"min_order_qty"`
	Rating       *float64  `json:"rating,omitempty"` // 0.00 to 5.00
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Category buckets products by market segment. The simulation draws its
// quantity ranges and sale probabilities from this.
type Category string

const (
	CategoryPremium  Category = "premium"
	CategoryMidrange Category = "midrange"
	CategoryBudget   Category = "budget"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPremium, CategoryMidrange, CategoryBudget:
		return true
	}
	return false
}

// Product is a distinct stocked model, identified by SKU. The SKU is
// immutable once created; price and minimum stock may change.
type Product struct {
	ID         uuid.UUID  `json:"id"`
	SKU        string     `json:"sku"`
	Brand      string     `json:"brand"`
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	UnitPrice  float64    `json:"unit_price"`
	MinStock   int        `json:"min_stock"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

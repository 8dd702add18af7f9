package reports

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel is the quantity of one product at one location.
type StockLevel struct {
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	ProductName  string    `json:"product_name"`
	LocationID   uuid.UUID `json:"location_id"`
	LocationCode string    `json:"location_code"`
	Quantity     int       `json:"quantity"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductTotal is the summed quantity of one product across all locations.
type ProductTotal struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Total     int       `json:"total"`
}

// BelowMinimumItem is a product whose total across locations is under its
// configured minimum stock level.
type BelowMinimumItem struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Total     int       `json:"total"`
	MinStock  int       `json:"min_stock"`
}

// CategoryValuation is the stock value of one category: sum over products of
// quantity times unit price.
type CategoryValuation struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Units    int     `json:"units"`
}

// HighValueItem is one inventory row whose stock value clears a threshold.
type HighValueItem struct {
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	LocationCode string    `json:"location_code"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Value        float64   `json:"value"`
}

// Summary holds whole-ledger statistics.
type Summary struct {
	TotalProducts      int     `json:"total_products"`
	TotalLocations     int     `json:"total_locations"`
	TotalValue         float64 `json:"total_inventory_value"`
	BelowMinimumCount  int     `json:"below_minimum_count"`
	RecentTransactions int     `json:"recent_transactions"` // last 7 days
}

// StockFilter narrows StockLevels by product and/or location.
type StockFilter struct {
	SKU          string
	LocationCode string
}

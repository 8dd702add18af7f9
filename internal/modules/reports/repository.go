package reports

import "context"

// Repository reads aggregate views from the materialized inventory rows.
// Nothing here mutates state, and nothing re-scans the transaction ledger:
// the inventory table is the authoritative running total.
type Repository interface {
	StockLevels(ctx context.Context, filter StockFilter) ([]*StockLevel, error)
	TotalsBySKU(ctx context.Context) ([]*ProductTotal, error)
	BelowMinimum(ctx context.Context) ([]*BelowMinimumItem, error)
	ValuationByCategory(ctx context.Context) ([]*CategoryValuation, error)
	HighValue(ctx context.Context, threshold float64) ([]*HighValueItem, error)
	Summary(ctx context.Context) (*Summary, error)
}

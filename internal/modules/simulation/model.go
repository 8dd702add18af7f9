package simulation

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmwansa/stockledger-backend/internal/modules/catalog"
	"github.com/jmwansa/stockledger-backend/internal/modules/reports"
)

// State names the phase of the day loop. The engine only leaves Idle/DayEnd
// through AdvanceDay and always returns to DayEnd; there is no terminal
// state.
type State string

const (
	StateIdle       State = "idle"
	StateDayStart   State = "day_start"
	StateGenerating State = "generating"
	StateApplying   State = "applying"
	StateReporting  State = "reporting"
	StateDayEnd     State = "day_end"
	StatePaused     State = "paused"
)

// CategoryProfile drives generation for one product category.
type CategoryProfile struct {
	InitialMin, InitialMax int     // one-time seeding range per location
	DailyMin, DailyMax     int     // daily sale quantity range
	SaleProbability        float64 // chance of a sale per product per day
	PriceMin, PriceMax     float64
	MinStock               int
}

// DefaultProfiles mirrors the long-running retail calibration: premium
// models move in small expensive quantities, budget models in bulk.
func DefaultProfiles() map[catalog.Category]CategoryProfile {
	return map[catalog.Category]CategoryProfile{
		catalog.CategoryPremium:  {InitialMin: 20, InitialMax: 50, DailyMin: 1, DailyMax: 5, SaleProbability: 0.3, PriceMin: 1500, PriceMax: 3000, MinStock: 10},
		catalog.CategoryMidrange: {InitialMin: 50, InitialMax: 100, DailyMin: 5, DailyMax: 15, SaleProbability: 0.5, PriceMin: 800, PriceMax: 1499.99, MinStock: 20},
		catalog.CategoryBudget:   {InitialMin: 100, InitialMax: 200, DailyMin: 10, DailyMax: 30, SaleProbability: 0.7, PriceMin: 300, PriceMax: 799.99, MinStock: 30},
	}
}

// SkippedTransaction is one generated transaction the ledger rejected.
// Batch application continues past it.
type SkippedTransaction struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// DayReport is the end-of-day snapshot persisted after each simulated day.
type DayReport struct {
	ID           uuid.UUID                    `json:"id"`
	Day          time.Time                    `json:"day"`
	Generated    int                          `json:"generated"`
	Applied      int                          `json:"applied"`
	Skipped      []SkippedTransaction         `json:"skipped,omitempty"`
	StockLevels  []*reports.StockLevel        `json:"stock_levels"`
	BelowMinimum []*reports.BelowMinimumItem  `json:"below_minimum"`
	Valuations   []*reports.CategoryValuation `json:"valuation_by_category"`
	HighValue    []*reports.HighValueItem     `json:"high_value"`
	CreatedAt    time.Time                    `json:"created_at"`
}

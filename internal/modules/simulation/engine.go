package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmwansa/stockledger-backend/internal/modules/catalog"
	"github.com/jmwansa/stockledger-backend/internal/modules/ledger"
	"github.com/jmwansa/stockledger-backend/internal/modules/reports"
	"github.com/jmwansa/stockledger-backend/internal/modules/warehouse"
)

var (
	// ErrPaused means AdvanceDay was called while the engine is paused.
	ErrPaused = errors.New("simulation is paused")
	// ErrAlreadySeeded means Seed was called with products already present.
	ErrAlreadySeeded = errors.New("simulation already seeded")
)

// Engine owns the simulated clock and drives the day loop. The current day
// is created at engine init and advanced only by AdvanceDay; the engine may
// be paused between days, never mid-batch, since the mutex spans a whole
// day run.
type Engine struct {
	mu    sync.Mutex
	state State
	day   time.Time

	gen       *Generator
	ledger    ledger.Service
	reports   reports.Service
	catalog   catalog.Service
	warehouse warehouse.Service
	repo      ReportRepository
	logger    *zap.Logger
}

// NewEngine creates a simulation engine starting at today's date.
func NewEngine(gen *Generator, ledgerSvc ledger.Service, reportsSvc reports.Service,
	catalogSvc catalog.Service, warehouseSvc warehouse.Service, repo ReportRepository, logger *zap.Logger) *Engine {
	return &Engine{
		state:     StateIdle,
		day:       time.Now().UTC().Truncate(24 * time.Hour),
		gen:       gen,
		ledger:    ledgerSvc,
		reports:   reportsSvc,
		catalog:   catalogSvc,
		warehouse: warehouseSvc,
		repo:      repo,
		logger:    logger,
	}
}

// State returns the engine's current phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentDay returns the simulated date.
func (e *Engine) CurrentDay() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.day
}

// Pause stops the loop between days. A run already in flight completes.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StatePaused
}

// Resume lifts a pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StatePaused {
		e.state = StateIdle
	}
}

// Seed creates the initial catalog, the three warehouses, and the starting
// stock. Starting stock is written as adjustment transactions through the
// ledger so the transaction log is complete from day zero.
func (e *Engine) Seed(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.catalog.ListProducts(ctx, "", false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrAlreadySeeded
	}

	var locations []*warehouse.Location
	for _, req := range e.gen.SeedLocations() {
		l, err := e.warehouse.CreateLocation(ctx, req)
		if err != nil {
			return fmt.Errorf("seed location %s: %w", req.Code, err)
		}
		locations = append(locations, l)
	}

	var products []*catalog.Product
	for _, req := range e.gen.SeedProducts() {
		p, err := e.catalog.CreateProduct(ctx, req)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", req.SKU, err)
		}
		products = append(products, p)
	}

	for _, req := range e.gen.InitialStock(products, locations, e.day) {
		if _, _, err := e.ledger.Record(ctx, req); err != nil {
			return fmt.Errorf("seed stock: %w", err)
		}
	}

	e.logger.Info("simulation seeded",
		zap.Int("products", len(products)),
		zap.Int("locations", len(locations)))
	return nil
}

// AdvanceDay runs one full simulated day: generate a batch, apply it
// through the ledger, and persist the end-of-day report. A rejected
// transaction is logged and skipped; it never aborts the batch.
func (e *Engine) AdvanceDay(ctx context.Context) (*DayReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StatePaused {
		return nil, ErrPaused
	}

	e.day = e.day.AddDate(0, 0, 1)
	e.state = StateDayStart

	products, err := e.catalog.ListProducts(ctx, "", true)
	if err != nil {
		return nil, e.fail(err)
	}
	locations, err := e.warehouse.ListLocations(ctx, true)
	if err != nil {
		return nil, e.fail(err)
	}

	e.state = StateGenerating
	onHand, totals, err := e.currentStock(ctx)
	if err != nil {
		return nil, e.fail(err)
	}
	batch := e.gen.DailyBatch(products, locations, onHand, totals, e.day)

	skuByID := make(map[string]string, len(products))
	for _, p := range products {
		skuByID[p.ID.String()] = p.SKU
	}
	codeByID := make(map[string]string, len(locations))
	for _, l := range locations {
		codeByID[l.ID.String()] = l.Code
	}

	e.state = StateApplying
	report := &DayReport{
		ID:        uuid.New(),
		Day:       e.day,
		Generated: len(batch),
	}
	for _, req := range batch {
		if _, _, err := e.ledger.Record(ctx, req); err != nil {
			skip := SkippedTransaction{
				SKU:      skuByID[req.ProductID],
				Location: codeByID[req.LocationID],
				Type:     string(req.Type),
				Quantity: req.Quantity,
				Reason:   err.Error(),
			}
			report.Skipped = append(report.Skipped, skip)
			e.logger.Warn("simulated transaction rejected",
				zap.String("sku", skip.SKU),
				zap.String("location", skip.Location),
				zap.String("type", skip.Type),
				zap.Error(err))
			continue
		}
		report.Applied++
	}

	e.state = StateReporting
	if report.StockLevels, err = e.reports.StockLevels(ctx, reports.StockFilter{}); err != nil {
		return nil, e.fail(err)
	}
	if report.BelowMinimum, err = e.reports.BelowMinimum(ctx); err != nil {
		return nil, e.fail(err)
	}
	if report.Valuations, err = e.reports.ValuationByCategory(ctx); err != nil {
		return nil, e.fail(err)
	}
	if report.HighValue, err = e.reports.HighValue(ctx, 10000); err != nil {
		return nil, e.fail(err)
	}
	report.CreatedAt = time.Now().UTC()
	if err := e.repo.Save(ctx, report); err != nil {
		return nil, e.fail(err)
	}

	e.state = StateDayEnd
	e.logger.Info("simulated day complete",
		zap.Time("day", report.Day),
		zap.Int("generated", report.Generated),
		zap.Int("applied", report.Applied),
		zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

func (e *Engine) fail(err error) error {
	e.state = StateIdle
	return err
}

// currentStock reads the materialized levels used to steer restocks and
// transfers.
func (e *Engine) currentStock(ctx context.Context) (map[[2]string]int, map[string]int, error) {
	levels, err := e.reports.StockLevels(ctx, reports.StockFilter{})
	if err != nil {
		return nil, nil, err
	}
	onHand := make(map[[2]string]int, len(levels))
	for _, s := range levels {
		onHand[[2]string{s.SKU, s.LocationCode}] = s.Quantity
	}
	productTotals, err := e.reports.TotalsBySKU(ctx)
	if err != nil {
		return nil, nil, err
	}
	totals := make(map[string]int, len(productTotals))
	for _, t := range productTotals {
		totals[t.SKU] = t.Total
	}
	return onHand, totals, nil
}

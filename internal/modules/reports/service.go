package reports

import "context"

// Service derives read-only views over the entity store. It never mutates
// state; concurrent writers may make a view momentarily stale, but never
// expose a partially applied transaction.
type Service interface {
	StockLevels(ctx context.Context, filter StockFilter) ([]*StockLevel, error)
	TotalsBySKU(ctx context.Context) ([]*ProductTotal, error)
	BelowMinimum(ctx context.Context) ([]*BelowMinimumItem, error)
	ValuationByCategory(ctx context.Context) ([]*CategoryValuation, error)
	HighValue(ctx context.Context, threshold float64) ([]*HighValueItem, error)
	Summary(ctx context.Context) (*Summary, error)
}

type service struct{ repo Repository }

// NewService creates a new reporting service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) StockLevels(ctx context.Context, filter StockFilter) ([]*StockLevel, error) {
	return s.repo.StockLevels(ctx, filter)
}

func (s *service) TotalsBySKU(ctx context.Context) ([]*ProductTotal, error) {
	return s.repo.TotalsBySKU(ctx)
}

func (s *service) BelowMinimum(ctx context.Context) ([]*BelowMinimumItem, error) {
	return s.repo.BelowMinimum(ctx)
}

func (s *service) ValuationByCategory(ctx context.Context) ([]*CategoryValuation, error) {
	return s.repo.ValuationByCategory(ctx)
}

func (s *service) HighValue(ctx context.Context, threshold float64) ([]*HighValueItem, error) {
	return s.repo.HighValue(ctx, threshold)
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx)
}

package simulation

import "context"

// ReportRepository persists end-of-day reports.
type ReportRepository interface {
	Save(ctx context.Context, report *DayReport) error
	List(ctx context.Context, limit int) ([]*DayReport, error)
	Get(ctx context.Context, id string) (*DayReport, error)
}

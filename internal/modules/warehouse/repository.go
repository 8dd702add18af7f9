package warehouse

import "context"

// Repository defines location data storage.
type Repository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	GetByCode(ctx context.Context, code string) (*Location, error)
	List(ctx context.Context, activeOnly bool) ([]*Location, error)
	Update(ctx context.Context, l *Location) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// CountReferences returns how many non-zero inventory rows and ledger
	// transactions reference the location.
	CountReferences(ctx context.Context, id string) (inventory, transactions int, err error)
}

package catalog

import "context"

// Repository defines product data storage.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, category string, activeOnly bool) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// CountReferences returns how many non-zero inventory rows and ledger
	// transactions reference the product. Used to guard hard deletes.
	CountReferences(ctx context.Context, id string) (inventory, transactions int, err error)
}

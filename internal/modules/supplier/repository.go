package supplier

import "context"

// Repository defines supplier data storage.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, id string) (*Supplier, error)
	GetByCode(ctx context.Context, code string) (*Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountProducts(ctx context.Context, id string) (int, error)
}

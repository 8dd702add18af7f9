package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrIdentityConflict means an update tried to change the product's SKU.
	ErrIdentityConflict = errors.New("product SKU is immutable")
	// ErrReferentialConflict means the product still has stock on hand or
	// recorded transactions and cannot be hard-deleted.
	ErrReferentialConflict = errors.New("product is referenced by inventory or transactions")
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	// DeleteProduct removes a product. With archive=true it is soft-deleted
	// regardless of references; otherwise any non-zero inventory row or
	// recorded transaction rejects the delete with ErrReferentialConflict.
	DeleteProduct(ctx context.Context, id string, archive bool) error
}

// CreateProductRequest holds the data for creating a product.
type CreateProductRequest struct {
	SKU        string   `json:"sku"`
	Brand      string   `json:"brand"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	UnitPrice  float64  `json:"unit_price"`
	MinStock   int      `json:"min_stock"`
	SupplierID string   `json:"supplier_id,omitempty"`
}

// UpdateProductRequest holds mutable product fields. SKU, if present, must
// match the stored one.
type UpdateProductRequest struct {
	SKU        string   `json:"sku,omitempty"`
	Brand      string   `json:"brand"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	UnitPrice  float64  `json:"unit_price"`
	MinStock   int      `json:"min_stock"`
	SupplierID string   `json:"supplier_id,omitempty"`
}

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.SKU == "" || req.Name == "" {
		return nil, fmt.Errorf("sku and name are required")
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("unit_price must not be negative")
	}
	if req.MinStock < 0 {
		return nil, fmt.Errorf("min_stock must not be negative")
	}
	p := &Product{
		ID:        uuid.New(),
		SKU:       req.SKU,
		Brand:     req.Brand,
		Name:      req.Name,
		Category:  req.Category,
		UnitPrice: req.UnitPrice,
		MinStock:  req.MinStock,
		IsActive:  true,
	}
	if req.SupplierID != "" {
		sid, err := uuid.Parse(req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier_id: %w", err)
		}
		p.SupplierID = &sid
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

func (s *service) ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error) {
	return s.repo.List(ctx, category, activeOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SKU != "" && req.SKU != p.SKU {
		return nil, ErrIdentityConflict
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}
	if req.UnitPrice < 0 || req.MinStock < 0 {
		return nil, fmt.Errorf("unit_price and min_stock must not be negative")
	}
	p.Brand = req.Brand
	p.Name = req.Name
	p.Category = req.Category
	p.UnitPrice = req.UnitPrice
	p.MinStock = req.MinStock
	if req.SupplierID != "" {
		sid, err := uuid.Parse(req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier_id: %w", err)
		}
		p.SupplierID = &sid
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string, archive bool) error {
	if archive {
		return s.repo.Archive(ctx, id)
	}
	inventory, transactions, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if inventory > 0 || transactions > 0 {
		return ErrReferentialConflict
	}
	return s.repo.Delete(ctx, id)
}

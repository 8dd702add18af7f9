package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrReferentialConflict means the supplier is still referenced by products.
	ErrReferentialConflict = errors.New("supplier is referenced by existing products")
)

// Service defines supplier business logic.
type Service interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	GetSupplierByCode(ctx context.Context, code string) (*Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*Supplier, error)
	// DeleteSupplier removes a supplier. With archive=true the supplier is
	// soft-deleted even while products reference it; otherwise a referenced
	// supplier is rejected with ErrReferentialConflict.
	DeleteSupplier(ctx context.Context, id string, archive bool) error
}

// CreateSupplierRequest holds data for creating a supplier.
type CreateSupplierRequest struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
	LeadTimeDays int      `json:"lead_time_days"`
	PaymentTerms string   `json:"payment_terms"`
	MinOrderQty  int      `json:"min_order_qty"`
	Rating       *float64 `json:"rating"`
}

// UpdateSupplierRequest holds mutable supplier fields.
type UpdateSupplierRequest struct {
	Name         string   `json:"name"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
	LeadTimeDays int      `json:"lead_time_days"`
	PaymentTerms string   `json:"payment_terms"`
	MinOrderQty  int      `json:"min_order_qty"`
	Rating       *float64 `json:"rating"`
}

type service struct{ repo Repository }

// NewService creates a new supplier service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*Supplier, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("code and name are required")
	}
	leadTime := req.LeadTimeDays
	if leadTime <= 0 {
		leadTime = 7
	}
	terms := req.PaymentTerms
	if terms == "" {
		terms = "Net 30"
	}
	minOrder := req.MinOrderQty
	if minOrder <= 0 {
		minOrder = 1
	}
	sup := &Supplier{
		ID:           uuid.New(),
		Code:         req.Code,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		LeadTimeDays: leadTime,
		PaymentTerms: terms,
		MinOrderQty:  minOrder,
		Rating:       req.Rating,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetSupplierByCode(ctx context.Context, code string) (*Supplier, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) ListSuppliers(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*Supplier, error) {
	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sup.Name = req.Name
	sup.ContactEmail = req.ContactEmail
	sup.ContactPhone = req.ContactPhone
	if req.LeadTimeDays > 0 {
		sup.LeadTimeDays = req.LeadTimeDays
	}
	if req.PaymentTerms != "" {
		sup.PaymentTerms = req.PaymentTerms
	}
	if req.MinOrderQty > 0 {
		sup.MinOrderQty = req.MinOrderQty
	}
	sup.Rating = req.Rating
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *service) DeleteSupplier(ctx context.Context, id string, archive bool) error {
	if archive {
		return s.repo.Archive(ctx, id)
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrReferentialConflict
	}
	return s.repo.Delete(ctx, id)
}

package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrReferentialConflict means the location still holds stock or has
	// recorded transactions and cannot be hard-deleted.
	ErrReferentialConflict = errors.New("location is referenced by inventory or transactions")
)

// Service defines location business logic.
type Service interface {
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error)
	GetLocation(ctx context.Context, id string) (*Location, error)
	GetLocationByCode(ctx context.Context, code string) (*Location, error)
	ListLocations(ctx context.Context, activeOnly bool) ([]*Location, error)
	UpdateLocation(ctx context.Context, id string, req UpdateLocationRequest) (*Location, error)
	DeleteLocation(ctx context.Context, id string, archive bool) error
}

// CreateLocationRequest holds data for creating a location.
type CreateLocationRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// UpdateLocationRequest holds mutable location fields.
type UpdateLocationRequest struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

type service struct{ repo Repository }

// NewService creates a new warehouse service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("code and name are required")
	}
	kind := req.Kind
	if kind == "" {
		kind = KindWarehouse
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown location kind %q", kind)
	}
	l := &Location{
		ID:       uuid.New(),
		Code:     req.Code,
		Name:     req.Name,
		Kind:     kind,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) GetLocation(ctx context.Context, id string) (*Location, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetLocationByCode(ctx context.Context, code string) (*Location, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) ListLocations(ctx context.Context, activeOnly bool) ([]*Location, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) UpdateLocation(ctx context.Context, id string, req UpdateLocationRequest) (*Location, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		l.Name = req.Name
	}
	if req.Kind != "" {
		if !req.Kind.Valid() {
			return nil, fmt.Errorf("unknown location kind %q", req.Kind)
		}
		l.Kind = req.Kind
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) DeleteLocation(ctx context.Context, id string, archive bool) error {
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

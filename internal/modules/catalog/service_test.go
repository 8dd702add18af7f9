package catalog

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
)

type mockRepo struct {
	mu           sync.Mutex
	products     map[string]*Product
	inventory    int
	transactions int
	archived     []string
	deleted      []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[string]*Product)}
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID.String()] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepo) GetBySKU(_ context.Context, sku string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRepo) List(_ context.Context, _ string, _ bool) ([]*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID.String()]; !ok {
		return sql.ErrNoRows
	}
	m.products[p.ID.String()] = p
	return nil
}

func (m *mockRepo) Archive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, id)
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.products, id)
	return nil
}

func (m *mockRepo) CountReferences(_ context.Context, _ string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventory, m.transactions, nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing sku", CreateProductRequest{Name: "XPS 15", Category: CategoryPremium, UnitPrice: 2000}},
		{"missing name", CreateProductRequest{SKU: "LAP-001", Category: CategoryPremium, UnitPrice: 2000}},
		{"unknown category", CreateProductRequest{SKU: "LAP-001", Name: "XPS 15", Category: "luxury", UnitPrice: 2000}},
		{"negative price", CreateProductRequest{SKU: "LAP-001", Name: "XPS 15", Category: CategoryPremium, UnitPrice: -1}},
		{"negative min stock", CreateProductRequest{SKU: "LAP-001", Name: "XPS 15", Category: CategoryPremium, UnitPrice: 2000, MinStock: -1}},
		{"bad supplier id", CreateProductRequest{SKU: "LAP-001", Name: "XPS 15", Category: CategoryPremium, UnitPrice: 2000, SupplierID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProduct(ctx, tt.req); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestUpdateProductCannotChangeSKU(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{
		SKU: "LAP-001", Brand: "Dell", Name: "XPS 15",
		Category: CategoryPremium, UnitPrice: 2199.99, MinStock: 10,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	_, err = svc.UpdateProduct(ctx, p.ID.String(), UpdateProductRequest{
		SKU: "LAP-999", Brand: "Dell", Name: "XPS 15",
		Category: CategoryPremium, UnitPrice: 2199.99, MinStock: 10,
	})
	if !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("err = %v, want ErrIdentityConflict", err)
	}

	// The same SKU, or none at all, is fine.
	updated, err := svc.UpdateProduct(ctx, p.ID.String(), UpdateProductRequest{
		SKU: "LAP-001", Brand: "Dell", Name: "XPS 15 (2026)",
		Category: CategoryPremium, UnitPrice: 1999.99, MinStock: 12,
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Name != "XPS 15 (2026)" || updated.UnitPrice != 1999.99 || updated.MinStock != 12 {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestDeleteProductReferentialGuard(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{
		SKU: "LAP-001", Name: "XPS 15", Category: CategoryPremium, UnitPrice: 2000,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	repo.transactions = 3
	if err := svc.DeleteProduct(ctx, p.ID.String(), false); !errors.Is(err, ErrReferentialConflict) {
		t.Fatalf("err = %v, want ErrReferentialConflict", err)
	}
	if len(repo.deleted) != 0 {
		t.Errorf("product was hard-deleted despite references")
	}

	// Archiving is always allowed.
	if err := svc.DeleteProduct(ctx, p.ID.String(), true); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(repo.archived) != 1 {
		t.Errorf("archive not recorded")
	}

	// Unreferenced products may be hard-deleted.
	repo.transactions = 0
	if err := svc.DeleteProduct(ctx, p.ID.String(), false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Errorf("delete not recorded")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{CategoryPremium, CategoryMidrange, CategoryBudget} {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Category("luxury").Valid() {
		t.Errorf("unknown category should be invalid")
	}
}

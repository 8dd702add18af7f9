package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// openTestDB connects using DATABASE_URL. Integration tests are skipped when
// it is unset; the schema from migrations/schema.sql must already be applied.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skipf("DATABASE_URL not set, skipping integration test")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	product uuid.UUID
	locA    uuid.UUID
	locB    uuid.UUID
}

// newFixture inserts a throwaway product and two locations, removed again in
// cleanup together with anything recorded against them.
func newFixture(t *testing.T, db *sql.DB) fixture {
	t.Helper()
	f := fixture{product: uuid.New(), locA: uuid.New(), locB: uuid.New()}
	suffix := f.product.String()[:8]

	if _, err := db.Exec(`
INSERT INTO products (id, sku, brand, name, category, unit_price, min_stock)
VALUES ($1, $2, 'Test', 'Test Laptop', 'midrange', 999.99, 10)`,
		f.product, "TST-"+suffix); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	for i, id := range []uuid.UUID{f.locA, f.locB} {
		if _, err := db.Exec(`
INSERT INTO locations (id, code, name, kind) VALUES ($1, $2, $3, 'warehouse')`,
			id, fmt.Sprintf("TST-%s-%d", suffix, i), fmt.Sprintf("Test Warehouse %d", i)); err != nil {
			t.Fatalf("insert location: %v", err)
		}
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM transactions WHERE product_id=$1`, f.product)
		db.Exec(`DELETE FROM inventory WHERE product_id=$1`, f.product)
		db.Exec(`DELETE FROM products WHERE id=$1`, f.product)
		db.Exec(`DELETE FROM locations WHERE id IN ($1, $2)`, f.locA, f.locB)
	})
	return f
}

func stockAt(t *testing.T, db *sql.DB, product, location uuid.UUID) int {
	t.Helper()
	var qty int
	err := db.QueryRow(`
SELECT quantity FROM inventory WHERE product_id=$1 AND location_id=$2`,
		product, location).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return qty
}

// TestApplyLifecycle walks one product through seeding, a sale, a transfer
// and an oversell attempt, checking the materialized rows at each step.
func TestApplyLifecycle(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db)
	svc := NewService(NewPostgresRepository(db), nil, false, zap.NewNop())
	ctx := context.Background()

	record := func(req RecordRequest) ([]StockChange, error) {
		_, changes, err := svc.Record(ctx, req)
		return changes, err
	}

	// Seed 30 units at A.
	if _, err := record(RecordRequest{
		Type: TypeAdjustment, ProductID: f.product.String(), LocationID: f.locA.String(), Quantity: 30,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := stockAt(t, db, f.product, f.locA); got != 30 {
		t.Fatalf("stock at A = %d, want 30", got)
	}

	// Ship 5 from A.
	if _, err := record(RecordRequest{
		Type: TypeShipment, ProductID: f.product.String(), LocationID: f.locA.String(), Quantity: 5,
	}); err != nil {
		t.Fatalf("shipment: %v", err)
	}
	if got := stockAt(t, db, f.product, f.locA); got != 25 {
		t.Fatalf("stock at A = %d, want 25", got)
	}

	// Transfer 10 from A to B.
	changes, err := record(RecordRequest{
		Type: TypeTransfer, ProductID: f.product.String(),
		LocationID: f.locA.String(), DestLocationID: f.locB.String(), Quantity: 10,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("transfer produced %d changes, want 2", len(changes))
	}
	if got := stockAt(t, db, f.product, f.locA); got != 15 {
		t.Errorf("stock at A = %d, want 15", got)
	}
	if got := stockAt(t, db, f.product, f.locB); got != 10 {
		t.Errorf("stock at B = %d, want 10", got)
	}

	// Shipping 20 from A must fail and change nothing.
	if _, err := record(RecordRequest{
		Type: TypeShipment, ProductID: f.product.String(), LocationID: f.locA.String(), Quantity: 20,
	}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("oversell err = %v, want ErrInsufficientStock", err)
	}
	if got := stockAt(t, db, f.product, f.locA); got != 15 {
		t.Errorf("stock at A after rejected oversell = %d, want 15", got)
	}

	// The log replays to the same state.
	log, err := svc.List(ctx, ListFilter{ProductID: f.product.String()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	replayed := Replay(log)
	if got := replayed[Pair{f.product, f.locA}]; got != 15 {
		t.Errorf("replayed A = %d, want 15", got)
	}
	if got := replayed[Pair{f.product, f.locB}]; got != 10 {
		t.Errorf("replayed B = %d, want 10", got)
	}
}

// TestApplyUnknownProduct checks the FK failure maps onto the invalid
// transaction error.
func TestApplyUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db)
	svc := NewService(NewPostgresRepository(db), nil, false, zap.NewNop())

	_, _, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypePurchase,
		ProductID:  uuid.New().String(), // not in products
		LocationID: f.locA.String(),
		Quantity:   5,
	})
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("err = %v, want ErrInvalidTransaction", err)
	}
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	f := newFixture(t, db)
	svc := NewService(NewPostgresRepository(db), nil, false, zap.NewNop())
	ctx := context.Background()

	seed := []RecordRequest{
		{Type: TypeAdjustment, ProductID: f.product.String(), LocationID: f.locA.String(), Quantity: 20},
		{Type: TypeShipment, ProductID: f.product.String(), LocationID: f.locA.String(), Quantity: 3},
		{Type: TypeTransfer, ProductID: f.product.String(), LocationID: f.locA.String(), DestLocationID: f.locB.String(), Quantity: 5},
	}
	for i, req := range seed {
		if _, _, err := svc.Record(ctx, req); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	byType, err := svc.List(ctx, ListFilter{ProductID: f.product.String(), Type: TypeShipment})
	if err != nil {
		t.Fatalf("List by type: %v", err)
	}
	if len(byType) != 1 || byType[0].Type != TypeShipment {
		t.Errorf("list by type = %+v, want one shipment", byType)
	}

	// Location filter matches transfers on either side.
	atB, err := svc.List(ctx, ListFilter{ProductID: f.product.String(), LocationID: f.locB.String()})
	if err != nil {
		t.Fatalf("List at B: %v", err)
	}
	if len(atB) != 1 || atB[0].Type != TypeTransfer {
		t.Errorf("list at B = %+v, want one transfer", atB)
	}
}

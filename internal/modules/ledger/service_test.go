package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memoryRepo applies transactions against an in-memory stock map with the
// same all-or-nothing semantics as the SQL implementation.
type memoryRepo struct {
	mu        sync.Mutex
	stock     map[Pair]int
	log       []*Transaction
	applyErrs []error // popped before each Apply; nil means proceed
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{stock: make(map[Pair]int)}
}

func (r *memoryRepo) Apply(_ context.Context, txn *Transaction, allowNegative bool) ([]StockChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.applyErrs) > 0 {
		err := r.applyErrs[0]
		r.applyErrs = r.applyErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	staged := make(map[Pair]int)
	var changes []StockChange
	for _, e := range txn.Effects() {
		p := Pair{e.ProductID, e.LocationID}
		before, ok := staged[p]
		if !ok {
			before = r.stock[p]
		}
		after := before + e.Delta
		if after < 0 && !allowNegative {
			return nil, fmt.Errorf("%w: product %s at %s", ErrInsufficientStock, e.ProductID, e.LocationID)
		}
		staged[p] = after
		changes = append(changes, StockChange{
			ProductID:    e.ProductID,
			LocationID:   e.LocationID,
			Before:       before,
			After:        after,
			WentNegative: after < 0,
		})
	}
	for p, q := range staged {
		r.stock[p] = q
	}
	r.log = append(r.log, txn)
	return changes, nil
}

func (r *memoryRepo) List(_ context.Context, _ ListFilter) ([]*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Transaction, len(r.log))
	copy(out, r.log)
	return out, nil
}

func (r *memoryRepo) quantity(p Pair) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[p]
}

type memoryGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *memoryGuard) Reserve(_ context.Context, requestID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[requestID] {
		return false, nil
	}
	g.seen[requestID] = true
	return true, nil
}

func newTestService(repo Repository, guard IdempotencyGuard, allowNegative bool) Service {
	return NewService(repo, guard, allowNegative, zap.NewNop())
}

func TestRecordPurchaseIncreasesStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()

	txn, changes, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypePurchase,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   30,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if txn.Type != TypePurchase || txn.Quantity != 30 {
		t.Errorf("unexpected transaction %+v", txn)
	}
	if len(changes) != 1 || changes[0].Before != 0 || changes[0].After != 30 {
		t.Errorf("unexpected changes %+v", changes)
	}
	if got := repo.quantity(Pair{product, location}); got != 30 {
		t.Errorf("stock = %d, want 30", got)
	}
}

func TestRecordShipmentDecreasesStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()
	repo.stock[Pair{product, location}] = 30

	_, changes, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypeShipment,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   5,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if changes[0].Before != 30 || changes[0].After != 25 {
		t.Errorf("change = %+v, want 30 -> 25", changes[0])
	}
}

func TestRecordInsufficientStockLeavesStateUnchanged(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()
	repo.stock[Pair{product, location}] = 3

	_, _, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypeShipment,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   5,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := repo.quantity(Pair{product, location}); got != 3 {
		t.Errorf("stock = %d, want 3 (unchanged)", got)
	}
	if len(repo.log) != 0 {
		t.Errorf("ledger has %d rows, want 0", len(repo.log))
	}
}

func TestRecordAllowNegativeFlagsChange(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, true)
	product, location := uuid.New(), uuid.New()
	repo.stock[Pair{product, location}] = 3

	_, changes, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypeShipment,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   5,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if changes[0].After != -2 || !changes[0].WentNegative {
		t.Errorf("change = %+v, want After=-2 WentNegative=true", changes[0])
	}
}

func TestRecordTransferMovesBothRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, src, dst := uuid.New(), uuid.New(), uuid.New()
	repo.stock[Pair{product, src}] = 25

	_, changes, err := svc.Record(context.Background(), RecordRequest{
		Type:           TypeTransfer,
		ProductID:      product.String(),
		LocationID:     src.String(),
		DestLocationID: dst.String(),
		Quantity:       10,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if got := repo.quantity(Pair{product, src}); got != 15 {
		t.Errorf("source stock = %d, want 15", got)
	}
	if got := repo.quantity(Pair{product, dst}); got != 10 {
		t.Errorf("destination stock = %d, want 10", got)
	}
}

func TestRecordTransferInsufficientAppliesNeither(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, src, dst := uuid.New(), uuid.New(), uuid.New()
	repo.stock[Pair{product, src}] = 4

	_, _, err := svc.Record(context.Background(), RecordRequest{
		Type:           TypeTransfer,
		ProductID:      product.String(),
		LocationID:     src.String(),
		DestLocationID: dst.String(),
		Quantity:       10,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := repo.quantity(Pair{product, src}); got != 4 {
		t.Errorf("source stock = %d, want 4 (unchanged)", got)
	}
	if got := repo.quantity(Pair{product, dst}); got != 0 {
		t.Errorf("destination stock = %d, want 0 (unchanged)", got)
	}
}

func TestRecordAdjustmentShiftsBySignedDelta(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()
	repo.stock[Pair{product, location}] = 10

	// +5 shifts 10 to 15; it does not set the row to 5.
	_, _, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypeAdjustment,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   5,
	})
	if err != nil {
		t.Fatalf("Record(+5): %v", err)
	}
	if got := repo.quantity(Pair{product, location}); got != 15 {
		t.Errorf("stock = %d, want 15", got)
	}

	_, _, err = svc.Record(context.Background(), RecordRequest{
		Type:       TypeAdjustment,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   -3,
	})
	if err != nil {
		t.Fatalf("Record(-3): %v", err)
	}
	if got := repo.quantity(Pair{product, location}); got != 12 {
		t.Errorf("stock = %d, want 12", got)
	}
}

func TestRecordValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, location, dest := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name string
		req  RecordRequest
	}{
		{"unknown type", RecordRequest{Type: "restock", ProductID: product.String(), LocationID: location.String(), Quantity: 1}},
		{"zero quantity", RecordRequest{Type: TypePurchase, ProductID: product.String(), LocationID: location.String(), Quantity: 0}},
		{"zero adjustment", RecordRequest{Type: TypeAdjustment, ProductID: product.String(), LocationID: location.String(), Quantity: 0}},
		{"negative purchase", RecordRequest{Type: TypePurchase, ProductID: product.String(), LocationID: location.String(), Quantity: -5}},
		{"negative shipment", RecordRequest{Type: TypeShipment, ProductID: product.String(), LocationID: location.String(), Quantity: -5}},
		{"bad product id", RecordRequest{Type: TypePurchase, ProductID: "nope", LocationID: location.String(), Quantity: 1}},
		{"bad location id", RecordRequest{Type: TypePurchase, ProductID: product.String(), LocationID: "nope", Quantity: 1}},
		{"transfer without destination", RecordRequest{Type: TypeTransfer, ProductID: product.String(), LocationID: location.String(), Quantity: 1}},
		{"transfer to itself", RecordRequest{Type: TypeTransfer, ProductID: product.String(), LocationID: location.String(), DestLocationID: location.String(), Quantity: 1}},
		{"destination on purchase", RecordRequest{Type: TypePurchase, ProductID: product.String(), LocationID: location.String(), DestLocationID: dest.String(), Quantity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Record(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("err = %v, want ErrInvalidTransaction", err)
			}
		})
	}
	if len(repo.log) != 0 {
		t.Errorf("ledger has %d rows, want 0", len(repo.log))
	}
}

func TestRecordDuplicateRequest(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &memoryGuard{}, false)
	product, location := uuid.New(), uuid.New()

	req := RecordRequest{
		Type:       TypePurchase,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   10,
		RequestID:  "req-001",
	}
	if _, _, err := svc.Record(context.Background(), req); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	_, _, err := svc.Record(context.Background(), req)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("err = %v, want ErrDuplicateRequest", err)
	}
	if got := repo.quantity(Pair{product, location}); got != 10 {
		t.Errorf("stock = %d, want 10 (applied once)", got)
	}
}

func TestRecordRetriesSerializationFailures(t *testing.T) {
	repo := newMemoryRepo()
	repo.applyErrs = []error{ErrConcurrencyConflict, ErrConcurrencyConflict, nil}
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()

	_, _, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypePurchase,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   10,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := repo.quantity(Pair{product, location}); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

func TestRecordSurfacesConflictAfterRetriesExhausted(t *testing.T) {
	repo := newMemoryRepo()
	repo.applyErrs = []error{ErrConcurrencyConflict, ErrConcurrencyConflict, ErrConcurrencyConflict}
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()

	_, _, err := svc.Record(context.Background(), RecordRequest{
		Type:       TypePurchase,
		ProductID:  product.String(),
		LocationID: location.String(),
		Quantity:   10,
	})
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("err = %v, want ErrConcurrencyConflict", err)
	}
	if len(repo.log) != 0 {
		t.Errorf("ledger has %d rows, want 0", len(repo.log))
	}
}

func TestConcurrentShipmentsNeverOversell(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, location := uuid.New(), uuid.New()
	repo.stock[Pair{product, location}] = 10

	const workers = 25
	var applied, rejected int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := svc.Record(context.Background(), RecordRequest{
				Type:       TypeShipment,
				ProductID:  product.String(),
				LocationID: location.String(),
				Quantity:   1,
			})
			switch {
			case err == nil:
				atomic.AddInt64(&applied, 1)
			case errors.Is(err, ErrInsufficientStock):
				atomic.AddInt64(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if applied != 10 {
		t.Errorf("applied = %d, want 10", applied)
	}
	if rejected != workers-10 {
		t.Errorf("rejected = %d, want %d", rejected, workers-10)
	}
	if got := repo.quantity(Pair{product, location}); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestReplayMatchesAppliedState(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, false)
	product, a, b := uuid.New(), uuid.New(), uuid.New()

	requests := []RecordRequest{
		{Type: TypeAdjustment, ProductID: product.String(), LocationID: a.String(), Quantity: 30},
		{Type: TypeShipment, ProductID: product.String(), LocationID: a.String(), Quantity: 5},
		{Type: TypeTransfer, ProductID: product.String(), LocationID: a.String(), DestLocationID: b.String(), Quantity: 10},
		{Type: TypePurchase, ProductID: product.String(), LocationID: b.String(), Quantity: 7},
		{Type: TypeAdjustment, ProductID: product.String(), LocationID: b.String(), Quantity: -2},
	}
	for i, req := range requests {
		if _, _, err := svc.Record(context.Background(), req); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	replayed := Replay(repo.log)
	if len(replayed) != len(repo.stock) {
		t.Fatalf("replay has %d rows, stock has %d", len(replayed), len(repo.stock))
	}
	for p, want := range repo.stock {
		if got := replayed[p]; got != want {
			t.Errorf("replay[%v] = %d, want %d", p, got, want)
		}
	}

	// Replaying the same log again changes nothing.
	again := Replay(repo.log)
	for p, want := range replayed {
		if got := again[p]; got != want {
			t.Errorf("second replay[%v] = %d, want %d", p, got, want)
		}
	}
}

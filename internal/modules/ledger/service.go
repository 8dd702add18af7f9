package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTransaction covers malformed requests and unknown
	// product/location references. Nothing is written.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInsufficientStock means the change would drive a row below zero
	// while negative inventory is disallowed. Nothing is written.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateRequest means this request id was already submitted.
	ErrDuplicateRequest = errors.New("duplicate request")
	// ErrConcurrencyConflict is surfaced after the bounded internal retry
	// of serialization failures is exhausted.
	ErrConcurrencyConflict = errors.New("concurrency conflict, retry")
)

// maxApplyAttempts bounds the internal retry of serialization failures.
const maxApplyAttempts = 3

// Service is the write and read surface of the transaction ledger. Record
// is the single entry point for every stock mutation, whether it came from
// an operator, an import, or the simulator.
type Service interface {
	Record(ctx context.Context, req RecordRequest) (*Transaction, []StockChange, error)
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

type service struct {
	repo          Repository
	guard         IdempotencyGuard // nil disables duplicate detection
	allowNegative bool
	logger        *zap.Logger
}

// NewService creates the ledger service. allowNegative is the system-wide
// negative-inventory flag, fixed at construction.
func NewService(repo Repository, guard IdempotencyGuard, allowNegative bool, logger *zap.Logger) Service {
	return &service{repo: repo, guard: guard, allowNegative: allowNegative, logger: logger}
}

func (s *service) Record(ctx context.Context, req RecordRequest) (*Transaction, []StockChange, error) {
	if s.guard != nil && req.RequestID != "" {
		ok, err := s.guard.Reserve(ctx, req.RequestID)
		if err != nil {
			return nil, nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, nil, fmt.Errorf("%w: request %s", ErrDuplicateRequest, req.RequestID)
		}
	}

	txn, err := buildTransaction(req)
	if err != nil {
		return nil, nil, err
	}

	var changes []StockChange
	for attempt := 1; ; attempt++ {
		changes, err = s.repo.Apply(ctx, txn, s.allowNegative)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConcurrencyConflict) || attempt >= maxApplyAttempts {
			return nil, nil, err
		}
		s.logger.Warn("retrying transaction after conflict",
			zap.String("transaction_id", txn.ID.String()),
			zap.Int("attempt", attempt))
	}

	for _, c := range changes {
		if c.WentNegative {
			s.logger.Warn("inventory went negative",
				zap.String("transaction_id", txn.ID.String()),
				zap.String("product_id", c.ProductID.String()),
				zap.String("location_id", c.LocationID.String()),
				zap.Int("quantity", c.After))
		}
	}
	return txn, changes, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.List(ctx, filter)
}

// buildTransaction validates the request's domain invariants and shapes the
// ledger row. Structural failures reject before any mutation.
func buildTransaction(req RecordRequest) (*Transaction, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, req.Type)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must not be zero", ErrInvalidTransaction)
	}
	// Only adjustments carry a sign; everything else is a positive amount
	// whose direction is implied by the type.
	if req.Type != TypeAdjustment && req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive for %s", ErrInvalidTransaction, req.Type)
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product_id", ErrInvalidTransaction)
	}
	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid location_id", ErrInvalidTransaction)
	}

	txn := &Transaction{
		ID:         uuid.New(),
		Type:       req.Type,
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   req.Quantity,
		Reference:  req.Reference,
		Note:       req.Note,
		ActorID:    req.ActorID,
		RecordedAt: time.Now().UTC(),
	}
	if req.OccurredAt != nil {
		txn.RecordedAt = req.OccurredAt.UTC()
	}

	if req.Type == TypeTransfer {
		if req.DestLocationID == "" {
			return nil, fmt.Errorf("%w: transfer requires dest_location_id", ErrInvalidTransaction)
		}
		destID, err := uuid.Parse(req.DestLocationID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid dest_location_id", ErrInvalidTransaction)
		}
		if destID == locationID {
			return nil, fmt.Errorf("%w: transfer source and destination must differ", ErrInvalidTransaction)
		}
		txn.DestLocationID = &destID
	} else if req.DestLocationID != "" {
		return nil, fmt.Errorf("%w: dest_location_id is only valid for transfers", ErrInvalidTransaction)
	}

	return txn, nil
}

package ledger

import "context"

// Repository is the transactional boundary of the stock engine: Apply must
// insert the ledger row and update the affected inventory rows as one unit
// of work, or fail without touching either.
type Repository interface {
	// Apply records the transaction and applies its effects. When
	// allowNegative is false an effect that would drive a row below zero
	// fails with ErrInsufficientStock and nothing is written. A retryable
	// serialization failure surfaces as ErrConcurrencyConflict.
	Apply(ctx context.Context, txn *Transaction, allowNegative bool) ([]StockChange, error)

	// List returns committed transactions matching the filter, ordered by
	// recorded_at then id ascending.
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

// IdempotencyGuard rejects duplicate submissions of the same client request.
type IdempotencyGuard interface {
	// Reserve claims the request id, returning false if it was already seen.
	Reserve(ctx context.Context, requestID string) (bool, error)
}

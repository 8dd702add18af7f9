package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
)

type postgres struct{ db *sql.DB }

// NewPostgresRepository creates the postgres-backed ledger store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

// Apply runs the record+apply unit of work: materialize the affected
// inventory rows, lock them in a fixed global order, check sufficiency,
// update, and append the ledger row, all inside one database transaction.
func (r *postgres) Apply(ctx context.Context, txn *Transaction, allowNegative bool) ([]StockChange, error) {
	effects := txn.Effects()
	if len(effects) == 0 {
		return nil, fmt.Errorf("%w: no effects for type %q", ErrInvalidTransaction, txn.Type)
	}

	// Lock ordering: always by location id, so concurrent transfers over
	// the same pair of rows cannot deadlock.
	ordered := make([]Effect, len(effects))
	copy(ordered, effects)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LocationID.String() < ordered[j].LocationID.String()
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Missing rows mean quantity zero; materialize them up front so they
	// can be locked. Unknown product/location ids fail here on the FK.
	for _, e := range ordered {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO inventory (product_id, location_id, quantity)
VALUES ($1, $2, 0)
ON CONFLICT (product_id, location_id) DO NOTHING`,
			e.ProductID, e.LocationID); err != nil {
			return nil, classify(err)
		}
	}

	changes := make([]StockChange, 0, len(ordered))
	for _, e := range ordered {
		var before int
		err := tx.QueryRowContext(ctx, `
SELECT quantity FROM inventory
WHERE product_id=$1 AND location_id=$2
FOR UPDATE`, e.ProductID, e.LocationID).Scan(&before)
		if err != nil {
			return nil, classify(err)
		}

		after := before + e.Delta
		if after < 0 && !allowNegative {
			return nil, fmt.Errorf("%w: %d on hand at %s, change %+d",
				ErrInsufficientStock, before, e.LocationID, e.Delta)
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE inventory SET quantity=$1, updated_at=NOW()
WHERE product_id=$2 AND location_id=$3`,
			after, e.ProductID, e.LocationID); err != nil {
			return nil, classify(err)
		}

		changes = append(changes, StockChange{
			ProductID:    e.ProductID,
			LocationID:   e.LocationID,
			Before:       before,
			After:        after,
			WentNegative: after < 0,
		})
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO transactions (id, txn_type, product_id, location_id, dest_location_id, quantity, reference, note, actor_id, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		txn.ID, txn.Type, txn.ProductID, txn.LocationID, txn.DestLocationID,
		txn.Quantity, txn.Reference, txn.Note, txn.ActorID, txn.RecordedAt); err != nil {
		return nil, classify(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return changes, nil
}

func (r *postgres) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	query := `
SELECT id, txn_type, product_id, location_id, dest_location_id, quantity, reference, note, actor_id, recorded_at
FROM transactions WHERE 1=1`
	args := []interface{}{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		query += fmt.Sprintf(clause, len(args))
	}
	if filter.ProductID != "" {
		add(` AND product_id=$%d`, filter.ProductID)
	}
	if filter.LocationID != "" {
		add(` AND (location_id=$%d`, filter.LocationID)
		query += fmt.Sprintf(` OR dest_location_id=$%d)`, len(args))
	}
	if filter.Type != "" {
		add(` AND txn_type=$%d`, filter.Type)
	}
	if filter.From != nil {
		add(` AND recorded_at >= $%d`, *filter.From)
	}
	if filter.To != nil {
		add(` AND recorded_at < $%d`, *filter.To)
	}
	query += ` ORDER BY recorded_at, id`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	add(` LIMIT $%d`, limit)
	if filter.Offset > 0 {
		add(` OFFSET $%d`, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transactions []*Transaction
	for rows.Next() {
		t := &Transaction{}
		if err := rows.Scan(&t.ID, &t.Type, &t.ProductID, &t.LocationID, &t.DestLocationID,
			&t.Quantity, &t.Reference, &t.Note, &t.ActorID, &t.RecordedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// classify maps postgres failures onto the ledger error taxonomy.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation: unknown product or location
			return fmt.Errorf("%w: %s", ErrInvalidTransaction, pqErr.Detail)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", ErrConcurrencyConflict, pqErr.Message)
		}
	}
	return err
}

package reports

import (
	"context"
	"database/sql"
)

type postgres struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

func (r *postgres) StockLevels(ctx context.Context, filter StockFilter) ([]*StockLevel, error) {
	query := `
SELECT i.product_id, p.sku, p.name, i.location_id, l.code, i.quantity, i.updated_at
FROM inventory i
JOIN products p ON p.id = i.product_id
JOIN locations l ON l.id = i.location_id
WHERE 1=1`
	args := []interface{}{}
	if filter.SKU != "" {
		args = append(args, filter.SKU)
		query += ` AND p.sku = $1`
	}
	if filter.LocationCode != "" {
		args = append(args, filter.LocationCode)
		if len(args) == 1 {
			query += ` AND l.code = $1`
		} else {
			query += ` AND l.code = $2`
		}
	}
	query += ` ORDER BY p.sku, l.code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []*StockLevel
	for rows.Next() {
		s := &StockLevel{}
		if err := rows.Scan(&s.ProductID, &s.SKU, &s.ProductName, &s.LocationID,
			&s.LocationCode, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, s)
	}
	return levels, rows.Err()
}

func (r *postgres) TotalsBySKU(ctx context.Context) ([]*ProductTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.sku, COALESCE(SUM(i.quantity), 0)
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
GROUP BY p.id, p.sku
ORDER BY p.sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var totals []*ProductTotal
	for rows.Next() {
		t := &ProductTotal{}
		if err := rows.Scan(&t.ProductID, &t.SKU, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// BelowMinimum uses a LEFT JOIN so a product with no inventory rows counts
// as zero on hand.
func (r *postgres) BelowMinimum(ctx context.Context) ([]*BelowMinimumItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.sku, p.name, p.category, COALESCE(SUM(i.quantity), 0) AS total, p.min_stock
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
WHERE p.is_active = TRUE
GROUP BY p.id, p.sku, p.name, p.category, p.min_stock
HAVING COALESCE(SUM(i.quantity), 0) < p.min_stock
ORDER BY p.sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BelowMinimumItem
	for rows.Next() {
		b := &BelowMinimumItem{}
		if err := rows.Scan(&b.ProductID, &b.SKU, &b.Name, &b.Category, &b.Total, &b.MinStock); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *postgres) ValuationByCategory(ctx context.Context) ([]*CategoryValuation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.category, COALESCE(SUM(i.quantity * p.unit_price), 0), COALESCE(SUM(i.quantity), 0)
FROM products p
LEFT JOIN inventory i ON i.product_id = p.id
GROUP BY p.category
ORDER BY p.category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var valuations []*CategoryValuation
	for rows.Next() {
		v := &CategoryValuation{}
		if err := rows.Scan(&v.Category, &v.Value, &v.Units); err != nil {
			return nil, err
		}
		valuations = append(valuations, v)
	}
	return valuations, rows.Err()
}

func (r *postgres) HighValue(ctx context.Context, threshold float64) ([]*HighValueItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT i.product_id, p.sku, l.code, i.quantity, p.unit_price, i.quantity * p.unit_price AS value
FROM inventory i
JOIN products p ON p.id = i.product_id
JOIN locations l ON l.id = i.location_id
WHERE i.quantity * p.unit_price >= $1
ORDER BY value DESC, p.sku, l.code`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HighValueItem
	for rows.Next() {
		h := &HighValueItem{}
		if err := rows.Scan(&h.ProductID, &h.SKU, &h.LocationCode, &h.Quantity, &h.UnitPrice, &h.Value); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (r *postgres) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	err := r.db.QueryRowContext(ctx, `
SELECT
  (SELECT COUNT(*) FROM products WHERE is_active = TRUE),
  (SELECT COUNT(*) FROM locations WHERE is_active = TRUE),
  (SELECT COALESCE(SUM(i.quantity * p.unit_price), 0) FROM inventory i JOIN products p ON p.id = i.product_id),
  (SELECT COUNT(*) FROM transactions WHERE recorded_at >= NOW() - INTERVAL '7 days')`).
		Scan(&s.TotalProducts, &s.TotalLocations, &s.TotalValue, &s.RecentTransactions)
	if err != nil {
		return nil, err
	}
	below, err := r.BelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	s.BelowMinimumCount = len(below)
	return s, nil
}

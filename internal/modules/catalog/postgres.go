package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgres struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

const productColumns = `id,sku,brand,name,category,unit_price,min_stock,supplier_id,is_active,created_at,updated_at`

func (r *postgres) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (id,sku,brand,name,category,unit_price,min_stock,supplier_id,is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.SKU, p.Brand, p.Name, p.Category, p.UnitPrice, p.MinStock, p.SupplierID, p.IsActive)
	return err
}

func (r *postgres) GetByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, uid))
}

func (r *postgres) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku=$1`, sku))
}

func scanProduct(row *sql.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.SKU, &p.Brand, &p.Name, &p.Category, &p.UnitPrice,
		&p.MinStock, &p.SupplierID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgres) List(ctx context.Context, category string, activeOnly bool) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category=$%d`, len(args))
	}
	if activeOnly {
		query += ` AND is_active=TRUE`
	}
	query += ` ORDER BY sku`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []*Product
	for rows.Next() {
		p := &Product{}
		if err := rows.Scan(&p.ID, &p.SKU, &p.Brand, &p.Name, &p.Category, &p.UnitPrice,
			&p.MinStock, &p.SupplierID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgres) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET brand=$1, name=$2, category=$3, unit_price=$4, min_stock=$5,
  supplier_id=$6, updated_at=NOW()
WHERE id=$7`,
		p.Brand, p.Name, p.Category, p.UnitPrice, p.MinStock, p.SupplierID, p.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("product %s not found", p.ID)
	}
	return nil
}

func (r *postgres) Archive(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE products SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, uid)
	return err
}

func (r *postgres) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, uid)
	return err
}

func (r *postgres) CountReferences(ctx context.Context, id string) (int, int, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return 0, 0, err
	}
	var inventory, transactions int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory WHERE product_id=$1 AND quantity <> 0`, uid).Scan(&inventory)
	if err != nil {
		return 0, 0, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE product_id=$1`, uid).Scan(&transactions)
	if err != nil {
		return 0, 0, err
	}
	return inventory, transactions, nil
}

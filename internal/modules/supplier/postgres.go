package supplier

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgres struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

func (r *postgres) Create(ctx context.Context, s *Supplier) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO suppliers (id,code,name,contact_email,contact_phone,lead_time_days,payment_terms,min_order_qty,rating,is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.Code, s.Name, s.ContactEmail, s.ContactPhone,
		s.LeadTimeDays, s.PaymentTerms, s.MinOrderQty, s.Rating, s.IsActive)
	return err
}

func (r *postgres) GetByID(ctx context.Context, id string) (*Supplier, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return r.scanOne(r.db.QueryRowContext(ctx, `
SELECT id,code,name,contact_email,contact_phone,lead_time_days,payment_terms,min_order_qty,rating,is_active,created_at,updated_at
FROM suppliers WHERE id=$1`, uid))
}

func (r *postgres) GetByCode(ctx context.Context, code string) (*Supplier, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
SELECT id,code,name,contact_email,contact_phone,lead_time_days,payment_terms,min_order_qty,rating,is_active,created_at,updated_at
FROM suppliers WHERE code=$1`, code))
}

func (r *postgres) scanOne(row *sql.Row) (*Supplier, error) {
	s := &Supplier{}
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.ContactEmail, &s.ContactPhone,
		&s.LeadTimeDays, &s.PaymentTerms, &s.MinOrderQty, &s.Rating, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgres) List(ctx context.Context, activeOnly bool) ([]*Supplier, error) {
	query := `
SELECT id,code,name,contact_email,contact_phone,lead_time_days,payment_terms,min_order_qty,rating,is_active,created_at,updated_at
FROM suppliers`
	if activeOnly {
		query += ` WHERE is_active=TRUE`
	}
	query += ` ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var suppliers []*Supplier
	for rows.Next() {
		s := &Supplier{}
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.ContactEmail, &s.ContactPhone,
			&s.LeadTimeDays, &s.PaymentTerms, &s.MinOrderQty, &s.Rating, &s.IsActive,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *postgres) Update(ctx context.Context, s *Supplier) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE suppliers SET name=$1, contact_email=$2, contact_phone=$3, lead_time_days=$4,
  payment_terms=$5, min_order_qty=$6, rating=$7, updated_at=NOW()
WHERE id=$8`,
		s.Name, s.ContactEmail, s.ContactPhone, s.LeadTimeDays,
		s.PaymentTerms, s.MinOrderQty, s.Rating, s.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("supplier %s not found", s.ID)
	}
	return nil
}

func (r *postgres) Archive(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE suppliers SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, uid)
	return err
}

func (r *postgres) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id=$1`, uid)
	return err
}

func (r *postgres) CountProducts(ctx context.Context, id string) (int, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return 0, err
	}
	var count int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE supplier_id=$1`, uid).Scan(&count)
	return count, err
}

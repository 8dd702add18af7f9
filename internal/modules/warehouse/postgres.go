package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgres struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgres{db: db} }

const locationColumns = `id,code,name,kind,is_active,created_at,updated_at`

func (r *postgres) Create(ctx context.Context, l *Location) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO locations (id,code,name,kind,is_active) VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.Code, l.Name, l.Kind, l.IsActive)
	return err
}

func (r *postgres) GetByID(ctx context.Context, id string) (*Location, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return scanLocation(r.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id=$1`, uid))
}

func (r *postgres) GetByCode(ctx context.Context, code string) (*Location, error) {
	return scanLocation(r.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE code=$1`, code))
}

func scanLocation(row *sql.Row) (*Location, error) {
	l := &Location{}
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.Kind, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *postgres) List(ctx context.Context, activeOnly bool) ([]*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations`
	if activeOnly {
		query += ` WHERE is_active=TRUE`
	}
	query += ` ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locations []*Location
	for rows.Next() {
		l := &Location{}
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.Kind, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *postgres) Update(ctx context.Context, l *Location) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE locations SET name=$1, kind=$2, updated_at=NOW() WHERE id=$3`,
		l.Name, l.Kind, l.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("location %s not found", l.ID)
	}
	return nil
}

func (r *postgres) Archive(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE locations SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, uid)
	return err
}

func (r *postgres) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM locations WHERE id=$1`, uid)
	return err
}

func (r *postgres) CountReferences(ctx context.Context, id string) (int, int, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return 0, 0, err
	}
	var inventory, transactions int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory WHERE location_id=$1 AND quantity <> 0`, uid).Scan(&inventory)
	if err != nil {
		return 0, 0, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE location_id=$1 OR dest_location_id=$1`, uid).Scan(&transactions)
	if err != nil {
		return 0, 0, err
	}
	return inventory, transactions, nil
}

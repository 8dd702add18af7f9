package simulation

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

type postgres struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) ReportRepository { return &postgres{db: db} }

func (r *postgres) Save(ctx context.Context, report *DayReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO simulation_reports (id, day, report) VALUES ($1, $2, $3)`,
		report.ID, report.Day, payload)
	return err
}

func (r *postgres) List(ctx context.Context, limit int) ([]*DayReport, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT report FROM simulation_reports ORDER BY day DESC, created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reports []*DayReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		report := &DayReport{}
		if err := json.Unmarshal(payload, report); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *postgres) Get(ctx context.Context, id string) (*DayReport, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	var payload []byte
	if err := r.db.QueryRowContext(ctx,
		`SELECT report FROM simulation_reports WHERE id=$1`, uid).Scan(&payload); err != nil {
		return nil, err
	}
	report := &DayReport{}
	if err := json.Unmarshal(payload, report); err != nil {
		return nil, err
	}
	return report, nil
}

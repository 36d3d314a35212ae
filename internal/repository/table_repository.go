package repository

import (
	"context"
	"database/sql"

	"mesaYaApi/internal/model"
)

// TableRepo provides read access to the seeded table fleet. Tables are
// immutable apart from the administrative is_available flag, so the repo
// exposes only queries.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = "id, location, table_number, capacity, is_available, created_at, updated_at"

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var t model.Table
	err := row.Scan(&t.ID, &t.Location, &t.TableNumber, &t.Capacity, &t.IsAvailable, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// AvailableByLocation returns the administratively available tables of a
// location ordered by capacity ascending (the selector prefers small
// tables, so this keeps results deterministic).
func (r *TableRepo) AvailableByLocation(ctx context.Context, location string) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables
	           WHERE location = ? AND is_available = 1
	           ORDER BY capacity, table_number`
	rows, err := r.db.QueryContext(ctx, q, location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// All returns every table ordered by location then table number, the order
// the availability view presents them in.
func (r *TableRepo) All(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables ORDER BY location, table_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

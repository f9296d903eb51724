package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const locationColumns = `id, name, is_active, created_at`

func scanLocation(row interface{ Scan(dest ...any) error }) (Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt)
	return l, err
}

func collectLocations(rows pgx.Rows) ([]Location, error) {
	defer rows.Close()
	var locations []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// ListActiveLocations returns the delivery locations offered to customers.
func (q *Queries) ListActiveLocations(ctx context.Context) ([]Location, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+locationColumns+` FROM locations WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectLocations(rows)
}

func (q *Queries) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectLocations(rows)
}

func (q *Queries) GetLocation(ctx context.Context, id uuid.UUID) (Location, error) {
	row := q.db.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	return scanLocation(row)
}

func (q *Queries) GetLocationByName(ctx context.Context, name string) (Location, error) {
	row := q.db.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = $1`, name)
	return scanLocation(row)
}

func (q *Queries) CreateLocation(ctx context.Context, name string) (Location, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO locations (name) VALUES ($1)
		RETURNING `+locationColumns,
		name,
	)
	return scanLocation(row)
}

type SetLocationActiveParams struct {
	ID       uuid.UUID
	IsActive bool
}

func (q *Queries) SetLocationActive(ctx context.Context, arg SetLocationActiveParams) (Location, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE locations SET is_active = $2 WHERE id = $1
		RETURNING `+locationColumns,
		arg.ID, arg.IsActive,
	)
	return scanLocation(row)
}


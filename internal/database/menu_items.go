package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, item_type, name, price, description, category, is_available, created_at, updated_at`

func scanMenuItem(row interface{ Scan(dest ...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID, &m.ItemType, &m.Name, &m.Price, &m.Description,
		&m.Category, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func collectMenuItems(rows pgx.Rows) ([]MenuItem, error) {
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// ListAvailableMenuItems returns available items of one category, sorted by name.
func (q *Queries) ListAvailableMenuItems(ctx context.Context, itemType string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE item_type = $1 AND is_available = true
		ORDER BY name`,
		itemType,
	)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

// ListMenuItems returns all items of one category regardless of availability.
func (q *Queries) ListMenuItems(ctx context.Context, itemType string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE item_type = $1
		ORDER BY name`,
		itemType,
	)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

type GetMenuItemParams struct {
	ID       uuid.UUID
	ItemType string
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE id = $1 AND item_type = $2`,
		arg.ID, arg.ItemType,
	)
	return scanMenuItem(row)
}

type CreateMenuItemParams struct {
	ItemType    string
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	Category    pgtype.Text
	IsAvailable bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO menu_items (item_type, name, price, description, category, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+menuItemColumns,
		arg.ItemType, arg.Name, arg.Price, arg.Description, arg.Category, arg.IsAvailable,
	)
	return scanMenuItem(row)
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	ItemType    string
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	Category    pgtype.Text
	IsAvailable bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $3, price = $4, description = $5, category = $6, is_available = $7, updated_at = now()
		WHERE id = $1 AND item_type = $2
		RETURNING `+menuItemColumns,
		arg.ID, arg.ItemType, arg.Name, arg.Price, arg.Description, arg.Category, arg.IsAvailable,
	)
	return scanMenuItem(row)
}

type DeleteMenuItemParams struct {
	ID       uuid.UUID
	ItemType string
}

func (q *Queries) DeleteMenuItem(ctx context.Context, arg DeleteMenuItemParams) error {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM menu_items WHERE id = $1 AND item_type = $2`,
		arg.ID, arg.ItemType,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

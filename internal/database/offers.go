package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const offerColumns = `id, name, code, discount, valid_until, is_active, created_at`

func scanOffer(row interface{ Scan(dest ...any) error }) (Offer, error) {
	var o Offer
	err := row.Scan(&o.ID, &o.Name, &o.Code, &o.Discount, &o.ValidUntil, &o.IsActive, &o.CreatedAt)
	return o, err
}

func collectOffers(rows pgx.Rows) ([]Offer, error) {
	defer rows.Close()
	var offers []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (q *Queries) ListOffers(ctx context.Context) ([]Offer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

// ListActiveOffers returns offers that are enabled and not yet expired.
func (q *Queries) ListActiveOffers(ctx context.Context, now time.Time) ([]Offer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+offerColumns+`
		FROM offers
		WHERE is_active = true AND valid_until >= $1
		ORDER BY valid_until`,
		now,
	)
	if err != nil {
		return nil, err
	}
	return collectOffers(rows)
}

type CreateOfferParams struct {
	Name       string
	Code       string
	Discount   pgtype.Numeric
	ValidUntil time.Time
}

func (q *Queries) CreateOffer(ctx context.Context, arg CreateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO offers (name, code, discount, valid_until)
		VALUES ($1, $2, $3, $4)
		RETURNING `+offerColumns,
		arg.Name, arg.Code, arg.Discount, arg.ValidUntil,
	)
	return scanOffer(row)
}

func (q *Queries) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

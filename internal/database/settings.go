package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) GetBillingSettings(ctx context.Context) (BillingSettings, error) {
	var s BillingSettings
	err := q.db.QueryRow(ctx, `
		SELECT name, delivery_fee, tax_rate, packaging, service, updated_at
		FROM billing_settings WHERE name = 'billing'`,
	).Scan(&s.Name, &s.DeliveryFee, &s.TaxRate, &s.Packaging, &s.Service, &s.UpdatedAt)
	return s, err
}

type UpsertBillingSettingsParams struct {
	DeliveryFee pgtype.Numeric
	TaxRate     pgtype.Numeric
	Packaging   pgtype.Numeric
	Service     pgtype.Numeric
}

func (q *Queries) UpsertBillingSettings(ctx context.Context, arg UpsertBillingSettingsParams) (BillingSettings, error) {
	var s BillingSettings
	err := q.db.QueryRow(ctx, `
		INSERT INTO billing_settings (name, delivery_fee, tax_rate, packaging, service)
		VALUES ('billing', $1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET delivery_fee = EXCLUDED.delivery_fee,
		    tax_rate = EXCLUDED.tax_rate,
		    packaging = EXCLUDED.packaging,
		    service = EXCLUDED.service,
		    updated_at = now()
		RETURNING name, delivery_fee, tax_rate, packaging, service, updated_at`,
		arg.DeliveryFee, arg.TaxRate, arg.Packaging, arg.Service,
	).Scan(&s.Name, &s.DeliveryFee, &s.TaxRate, &s.Packaging, &s.Service, &s.UpdatedAt)
	return s, err
}

package service

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/database"
)

// Billing holds the configurable pricing knobs. TaxRate is a percentage
// (5.0 means 5%), the rest are flat amounts per order.
type Billing struct {
	DeliveryFee decimal.Decimal
	TaxRate     decimal.Decimal
	Packaging   decimal.Decimal
	Service     decimal.Decimal
}

// DefaultBilling is used when no billing settings row exists yet.
func DefaultBilling() Billing {
	return Billing{
		DeliveryFee: decimal.RequireFromString("2.00"),
		TaxRate:     decimal.RequireFromString("5.0"),
		Packaging:   decimal.RequireFromString("0.50"),
		Service:     decimal.Zero,
	}
}

// BillingFromSettings converts the stored settings row.
func BillingFromSettings(s database.BillingSettings) Billing {
	return Billing{
		DeliveryFee: numericToDecimal(s.DeliveryFee),
		TaxRate:     numericToDecimal(s.TaxRate),
		Packaging:   numericToDecimal(s.Packaging),
		Service:     numericToDecimal(s.Service),
	}
}

// Quote is the full price breakdown shown on the order summary and
// persisted with the order.
type Quote struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Packaging   decimal.Decimal
	Service     decimal.Decimal
	Tax         decimal.Decimal
	TaxRate     decimal.Decimal
	Total       decimal.Decimal
}

// ComputeQuote derives the charges from a cart subtotal. Tax applies to
// the subtotal only, not to the fees.
func ComputeQuote(subtotal decimal.Decimal, b Billing) Quote {
	tax := subtotal.Mul(b.TaxRate).Div(decimal.NewFromInt(100))
	total := subtotal.Add(b.DeliveryFee).Add(b.Packaging).Add(b.Service).Add(tax)
	return Quote{
		Subtotal:    subtotal,
		DeliveryFee: b.DeliveryFee,
		Packaging:   b.Packaging,
		Service:     b.Service,
		Tax:         tax,
		TaxRate:     b.TaxRate,
		Total:       total,
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

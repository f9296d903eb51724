package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeQuoteWithDefaults(t *testing.T) {
	// 2x8.00 + 1x4.50 + 1x2.50 = 23.00
	subtotal := decimal.RequireFromString("23.00")
	q := ComputeQuote(subtotal, DefaultBilling())

	if got := q.Tax.StringFixed(2); got != "1.15" {
		t.Errorf("expected tax 1.15, got %s", got)
	}
	if got := q.Total.StringFixed(2); got != "26.65" {
		t.Errorf("expected total 26.65, got %s", got)
	}
	if got := q.DeliveryFee.StringFixed(2); got != "2.00" {
		t.Errorf("expected delivery fee 2.00, got %s", got)
	}
	if got := q.Packaging.StringFixed(2); got != "0.50" {
		t.Errorf("expected packaging 0.50, got %s", got)
	}
}

func TestComputeQuoteZeroSubtotal(t *testing.T) {
	q := ComputeQuote(decimal.Zero, DefaultBilling())
	if !q.Tax.IsZero() {
		t.Errorf("expected zero tax, got %s", q.Tax)
	}
	// Fees still apply.
	if got := q.Total.StringFixed(2); got != "2.50" {
		t.Errorf("expected total 2.50, got %s", got)
	}
}

func TestComputeQuoteCustomBilling(t *testing.T) {
	b := Billing{
		DeliveryFee: decimal.RequireFromString("3.00"),
		TaxRate:     decimal.RequireFromString("10.0"),
		Packaging:   decimal.Zero,
		Service:     decimal.RequireFromString("1.00"),
	}
	q := ComputeQuote(decimal.RequireFromString("50.00"), b)

	if got := q.Tax.StringFixed(2); got != "5.00" {
		t.Errorf("expected tax 5.00, got %s", got)
	}
	if got := q.Total.StringFixed(2); got != "59.00" {
		t.Errorf("expected total 59.00, got %s", got)
	}
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("12.34")
	n := decimalToNumeric(d)
	got := numericToDecimal(n)
	if !got.Equal(d) {
		t.Errorf("expected %s, got %s", d, got)
	}
}

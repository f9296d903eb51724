package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRedirect sends the flash-style payload the web client renders:
// a message with a bootstrap category and the page to navigate to.
func writeRedirect(w http.ResponseWriter, status int, message, category, redirect string) {
	writeJSON(w, status, map[string]string{
		"message":  message,
		"category": category,
		"redirect": redirect,
	})
}

func numericToDecimalAmount(n pgtype.Numeric) decimal.Decimal {
	d, err := decimal.NewFromString(numericToString(n))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// Package cart holds the order wizard state that travels with the
// customer between steps: cart lines, the chosen delivery date,
// location and time slot, plus the pointer to an order being tracked.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/enum"
)

// Item is a single cart line. Price is a snapshot taken when the item
// was added, so later menu edits do not reprice a cart in flight.
type Item struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
	Type     string          `json:"type"`
}

// ActiveOrder points at the most recently confirmed order so the
// tracking page can find it without a lookup by user.
type ActiveOrder struct {
	OrderID uuid.UUID `json:"order_id"`
}

// PendingRegistration carries a registration form across the OTP
// verification step.
type PendingRegistration struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	AltPhone string `json:"alt_phone,omitempty"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// State is everything the wizard remembers between requests.
type State struct {
	Items               []Item               `json:"items,omitempty"`
	DeliveryDate        string               `json:"delivery_date,omitempty"`
	DeliveryLocation    string               `json:"delivery_location,omitempty"`
	TimeSlot            string               `json:"time_slot,omitempty"`
	CurrentOrder        *ActiveOrder         `json:"current_order,omitempty"`
	PendingRegistration *PendingRegistration `json:"pending_registration,omitempty"`
}

// AddItem merges the line into the cart: an existing line with the same
// id and type gets its quantity bumped, otherwise a new line is appended.
func (s *State) AddItem(item Item) {
	for i := range s.Items {
		if s.Items[i].ID == item.ID && s.Items[i].Type == item.Type {
			s.Items[i].Quantity += item.Quantity
			return
		}
	}
	s.Items = append(s.Items, item)
}

// ReplaceMain drops every main dish line and adds the new one. Sides
// and other items are kept.
func (s *State) ReplaceMain(item Item) {
	kept := s.Items[:0]
	for _, it := range s.Items {
		if it.Type != enum.ItemTypeMain {
			kept = append(kept, it)
		}
	}
	s.Items = append(kept, item)
}

// Remove deletes the line matching id and type. Removing a line that
// is not in the cart is a no-op.
func (s *State) Remove(id uuid.UUID, itemType string) {
	for i, it := range s.Items {
		if it.ID == id && it.Type == itemType {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return
		}
	}
}

// Adjust changes a line's quantity by "increase" or "decrease".
// Quantity never drops below 1; use Remove to take a line out.
func (s *State) Adjust(id uuid.UUID, itemType, action string) {
	for i := range s.Items {
		if s.Items[i].ID != id || s.Items[i].Type != itemType {
			continue
		}
		switch action {
		case "increase":
			s.Items[i].Quantity++
		case "decrease":
			if s.Items[i].Quantity > 1 {
				s.Items[i].Quantity--
			}
		}
		return
	}
}

// HasMain reports whether the cart contains at least one main dish.
func (s *State) HasMain() bool {
	for _, it := range s.Items {
		if it.Type == enum.ItemTypeMain {
			return true
		}
	}
	return false
}

// Subtotal is the sum of price*quantity over all lines.
func (s *State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return total
}

// Count is the total number of units in the cart.
func (s *State) Count() int32 {
	var n int32
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// ClearAfterConfirm empties the cart and wizard selections once an
// order is placed, keeping only the pointer to the new order.
func (s *State) ClearAfterConfirm(orderID uuid.UUID) {
	s.Items = nil
	s.DeliveryDate = ""
	s.DeliveryLocation = ""
	s.TimeSlot = ""
	s.CurrentOrder = &ActiveOrder{OrderID: orderID}
}

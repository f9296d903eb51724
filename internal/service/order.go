package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/enum"
)

// Errors returned by the order service.
var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrNoMainDish             = errors.New("cart must contain a main dish")
	ErrMissingDeliveryDate    = errors.New("delivery date is required")
	ErrMissingLocation        = errors.New("delivery location is required")
	ErrMissingTimeSlot        = errors.New("time slot is required")
	ErrInvalidDeliveryDate    = errors.New("delivery date is not available")
	ErrInvalidTimeSlot        = errors.New("invalid time slot")
	ErrInvalidStatus          = errors.New("invalid order status")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
	ErrCancellationWindowOver = errors.New("cancellation window has closed")
)

// allowedTransitions maps each status to the statuses it may move to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPreparing:      {enum.OrderStatusOutForDelivery, enum.OrderStatusCancelled},
	enum.OrderStatusOutForDelivery: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
	enum.OrderStatusDelivered:      {},
	enum.OrderStatusCancelled:      {},
}

// ValidateStatusTransition checks a proposed status change against the
// lifecycle: preparing -> out_for_delivery -> delivered, with
// cancellation allowed from any non-terminal state.
func ValidateStatusTransition(from, to string) error {
	if !enum.IsValidOrderStatus(to) {
		return ErrInvalidStatus
	}
	next, ok := allowedTransitions[from]
	if !ok {
		return ErrInvalidStatus
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to place orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetBillingSettings(ctx context.Context) (database.BillingSettings, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateStatusHistory(ctx context.Context, arg database.CreateStatusHistoryParams) (database.OrderStatusHistory, error)
	CreateNotification(ctx context.Context, arg database.CreateNotificationParams) (database.Notification, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// PlaceOrderResult is the created order with its items.
type PlaceOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order placement.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, now: time.Now}
}

// PlaceOrder validates the wizard state, prices the cart, and writes
// the order, its items and the initial status history atomically.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, state *cart.State) (*PlaceOrderResult, error) {
	if len(state.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if !state.HasMain() {
		return nil, ErrNoMainDish
	}
	if state.DeliveryDate == "" {
		return nil, ErrMissingDeliveryDate
	}
	if state.DeliveryLocation == "" {
		return nil, ErrMissingLocation
	}
	if state.TimeSlot == "" {
		return nil, ErrMissingTimeSlot
	}
	deliveryDate, err := time.Parse(DateFormat, state.DeliveryDate)
	if err != nil {
		return nil, ErrInvalidDeliveryDate
	}
	if !IsValidDeliveryDate(state.DeliveryDate, s.now()) {
		return nil, ErrInvalidDeliveryDate
	}
	if !IsValidTimeSlot(state.TimeSlot) {
		return nil, ErrInvalidTimeSlot
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	billing := DefaultBilling()
	settings, err := store.GetBillingSettings(ctx)
	if err == nil {
		billing = BillingFromSettings(settings)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get billing settings: %w", err)
	}

	quote := ComputeQuote(state.Subtotal(), billing)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:           userID,
		Status:           enum.OrderStatusPreparing,
		DeliveryDate:     deliveryDate,
		DeliveryLocation: state.DeliveryLocation,
		TimeSlot:         state.TimeSlot,
		Subtotal:         decimalToNumeric(quote.Subtotal),
		DeliveryFee:      decimalToNumeric(quote.DeliveryFee),
		Packaging:        decimalToNumeric(quote.Packaging),
		Service:          decimalToNumeric(quote.Service),
		Tax:              decimalToNumeric(quote.Tax),
		TaxRate:          decimalToNumeric(quote.TaxRate),
		Total:            decimalToNumeric(quote.Total),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(state.Items))
	for i, line := range state.Items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  order.ID,
			ItemID:   line.ID,
			ItemType: line.Type,
			Name:     line.Name,
			Price:    decimalToNumeric(line.Price),
			Quantity: line.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create order item: %w", i, err)
		}
		items = append(items, item)
	}

	if _, err := store.CreateStatusHistory(ctx, database.CreateStatusHistoryParams{
		OrderID:   order.ID,
		Status:    enum.OrderStatusPreparing,
		ChangedBy: userID,
		Notes:     pgtype.Text{String: "Order placed", Valid: true},
	}); err != nil {
		return nil, fmt.Errorf("create status history: %w", err)
	}

	if _, err := store.CreateNotification(ctx, database.CreateNotificationParams{
		UserID:  userID,
		OrderID: pgtype.UUID{Bytes: order.ID, Valid: true},
		Title:   "Order Confirmed",
		Message: fmt.Sprintf("Your order #%s has been placed and is being prepared.", order.ID.String()[:8]),
	}); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &PlaceOrderResult{Order: order, Items: items}, nil
}

// ItemSubtotal is the line amount for an order item.
func ItemSubtotal(item database.OrderItem) decimal.Decimal {
	return numericToDecimal(item.Price).Mul(decimal.NewFromInt32(item.Quantity))
}

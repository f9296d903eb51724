package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, status, delivery_date, delivery_location, time_slot,
	subtotal, delivery_fee, packaging, service, tax, tax_rate, total, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.DeliveryDate, &o.DeliveryLocation, &o.TimeSlot,
		&o.Subtotal, &o.DeliveryFee, &o.Packaging, &o.Service, &o.Tax, &o.TaxRate, &o.Total,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type CreateOrderParams struct {
	UserID           uuid.UUID
	Status           string
	DeliveryDate     time.Time
	DeliveryLocation string
	TimeSlot         string
	Subtotal         pgtype.Numeric
	DeliveryFee      pgtype.Numeric
	Packaging        pgtype.Numeric
	Service          pgtype.Numeric
	Tax              pgtype.Numeric
	TaxRate          pgtype.Numeric
	Total            pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, delivery_date, delivery_location, time_slot,
			subtotal, delivery_fee, packaging, service, tax, tax_rate, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+orderColumns,
		arg.UserID, arg.Status, arg.DeliveryDate, arg.DeliveryLocation, arg.TimeSlot,
		arg.Subtotal, arg.DeliveryFee, arg.Packaging, arg.Service, arg.Tax, arg.TaxRate, arg.Total,
	)
	return scanOrder(row)
}

type CreateOrderItemParams struct {
	OrderID  uuid.UUID
	ItemID   uuid.UUID
	ItemType string
	Name     string
	Price    pgtype.Numeric
	Quantity int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, item_id, item_type, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, item_id, item_type, name, price, quantity`,
		arg.OrderID, arg.ItemID, arg.ItemType, arg.Name, arg.Price, arg.Quantity,
	).Scan(&it.ID, &it.OrderID, &it.ItemID, &it.ItemType, &it.Name, &it.Price, &it.Quantity)
	return it, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

type GetOrderForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetOrderForUser(ctx context.Context, arg GetOrderForUserParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		arg.ID, arg.UserID,
	)
	return scanOrder(row)
}

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, item_id, item_type, name, price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY item_type, name`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.ItemType, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrdersParams filters the admin order list. Zero-valued filters are
// ignored (all dates / statuses / locations).
type ListOrdersParams struct {
	DeliveryDate     pgtype.Date
	Status           pgtype.Text
	DeliveryLocation pgtype.Text
	Limit            int32
	Offset           int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::date IS NULL OR delivery_date = $1)
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR delivery_location = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		arg.DeliveryDate, arg.Status, arg.DeliveryLocation, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

type CountOrdersParams struct {
	DeliveryDate     pgtype.Date
	Status           pgtype.Text
	DeliveryLocation pgtype.Text
}

func (q *Queries) CountOrders(ctx context.Context, arg CountOrdersParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*)
		FROM orders
		WHERE ($1::date IS NULL OR delivery_date = $1)
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR delivery_location = $3)`,
		arg.DeliveryDate, arg.Status, arg.DeliveryLocation,
	).Scan(&n)
	return n, err
}

// ListOrdersForReport returns the filtered orders ordered by time slot,
// the order the PDF report renders them in.
func (q *Queries) ListOrdersForReport(ctx context.Context, arg CountOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::date IS NULL OR delivery_date = $1)
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR delivery_location = $3)
		ORDER BY time_slot`,
		arg.DeliveryDate, arg.Status, arg.DeliveryLocation,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Status,
	)
	return scanOrder(row)
}

type CancelOrderParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// CancelOrder marks a user's order cancelled. The WHERE clause enforces
// the precondition atomically: only non-terminal orders are touched.
func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status NOT IN ('delivered', 'cancelled')
		RETURNING `+orderColumns,
		arg.ID, arg.UserID,
	)
	return scanOrder(row)
}

type CreateStatusHistoryParams struct {
	OrderID   uuid.UUID
	Status    string
	ChangedBy uuid.UUID
	Notes     pgtype.Text
}

func (q *Queries) CreateStatusHistory(ctx context.Context, arg CreateStatusHistoryParams) (OrderStatusHistory, error) {
	var h OrderStatusHistory
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, order_id, status, changed_at, changed_by, notes`,
		arg.OrderID, arg.Status, arg.ChangedBy, arg.Notes,
	).Scan(&h.ID, &h.OrderID, &h.Status, &h.ChangedAt, &h.ChangedBy, &h.Notes)
	return h, err
}

func (q *Queries) ListStatusHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderStatusHistory, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, status, changed_at, changed_by, notes
		FROM order_status_history WHERE order_id = $1 ORDER BY changed_at`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []OrderStatusHistory
	for rows.Next() {
		var h OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ChangedAt, &h.ChangedBy, &h.Notes); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (q *Queries) CountAllOrders(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n)
	return n, err
}

func (q *Queries) CountOrdersByDeliveryDate(ctx context.Context, date time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE delivery_date = $1`, date).Scan(&n)
	return n, err
}

func (q *Queries) ListRecentOrders(ctx context.Context, limit int32) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListOrderDeliveryDates returns the distinct delivery dates present,
// for the admin filter dropdown.
func (q *Queries) ListOrderDeliveryDates(ctx context.Context) ([]time.Time, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT delivery_date FROM orders ORDER BY delivery_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

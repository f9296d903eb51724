package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const notificationColumns = `id, user_id, order_id, title, message, is_active, is_read, created_at`

type CreateNotificationParams struct {
	UserID  uuid.UUID
	OrderID pgtype.UUID
	Title   string
	Message string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	var n Notification
	err := q.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, order_id, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+notificationColumns,
		arg.UserID, arg.OrderID, arg.Title, arg.Message,
	).Scan(&n.ID, &n.UserID, &n.OrderID, &n.Title, &n.Message, &n.IsActive, &n.IsRead, &n.CreatedAt)
	return n, err
}

func (q *Queries) ListActiveNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Title, &n.Message, &n.IsActive, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

type MarkNotificationReadParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`,
		arg.ID, arg.UserID,
	)
	return err
}

// DeactivateNotificationsForOrder retires tracking notifications once the
// order reaches a terminal state.
func (q *Queries) DeactivateNotificationsForOrder(ctx context.Context, orderID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE notifications SET is_active = false WHERE order_id = $1`,
		orderID,
	)
	return err
}

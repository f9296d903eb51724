package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	Phone        string
	AltPhone     pgtype.Text
	Address      string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	ItemType    string
	Name        string
	Price       pgtype.Numeric
	Description pgtype.Text
	Category    pgtype.Text
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Order struct {
	ID               uuid.UUID
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
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	ItemID   uuid.UUID
	ItemType string
	Name     string
	Price    pgtype.Numeric
	Quantity int32
}

type OrderStatusHistory struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    string
	ChangedAt time.Time
	ChangedBy uuid.UUID
	Notes     pgtype.Text
}

type Location struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// BillingSettings is a singleton row keyed by name='billing'.
type BillingSettings struct {
	Name        string
	DeliveryFee pgtype.Numeric
	TaxRate     pgtype.Numeric
	Packaging   pgtype.Numeric
	Service     pgtype.Numeric
	UpdatedAt   time.Time
}

type Offer struct {
	ID         uuid.UUID
	Name       string
	Code       string
	Discount   pgtype.Numeric
	ValidUntil time.Time
	IsActive   bool
	CreatedAt  time.Time
}

type Announcement struct {
	ID        uuid.UUID
	Title     string
	Message   string
	Style     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OtpToken struct {
	ID        uuid.UUID
	Email     string
	Otp       string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	OrderID   pgtype.UUID
	Title     string
	Message   string
	IsActive  bool
	IsRead    bool
	CreatedAt time.Time
}

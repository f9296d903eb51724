package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, full_name, email, phone, alt_phone, address, password_hash, is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Phone, &u.AltPhone,
		&u.Address, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

type CreateUserParams struct {
	FullName     string
	Email        string
	Phone        string
	AltPhone     pgtype.Text
	Address      string
	PasswordHash string
	IsAdmin      bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (full_name, email, phone, alt_phone, address, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		arg.FullName, arg.Email, arg.Phone, arg.AltPhone, arg.Address, arg.PasswordHash, arg.IsAdmin,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID       uuid.UUID
	FullName string
	Phone    string
	Address  string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, phone = $3, address = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.FullName, arg.Phone, arg.Address,
	)
	return scanUser(row)
}

type UpdateUserPasswordParams struct {
	ID           uuid.UUID
	PasswordHash string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		arg.ID, arg.PasswordHash,
	)
	return err
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

type DismissAnnouncementParams struct {
	UserID         uuid.UUID
	AnnouncementID uuid.UUID
}

// DismissAnnouncement records that the user dismissed an announcement.
// Idempotent: dismissing twice is a no-op.
func (q *Queries) DismissAnnouncement(ctx context.Context, arg DismissAnnouncementParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO user_dismissed_announcements (user_id, announcement_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		arg.UserID, arg.AnnouncementID,
	)
	return err
}

package database

import (
	"context"
	"time"
)

const otpColumns = `id, email, otp, created_at, expires_at, used`

type CreateOtpTokenParams struct {
	Email     string
	Otp       string
	ExpiresAt time.Time
}

func (q *Queries) CreateOtpToken(ctx context.Context, arg CreateOtpTokenParams) (OtpToken, error) {
	var t OtpToken
	err := q.db.QueryRow(ctx, `
		INSERT INTO otp_tokens (email, otp, expires_at)
		VALUES ($1, $2, $3)
		RETURNING `+otpColumns,
		arg.Email, arg.Otp, arg.ExpiresAt,
	).Scan(&t.ID, &t.Email, &t.Otp, &t.CreatedAt, &t.ExpiresAt, &t.Used)
	return t, err
}

type GetActiveOtpTokenParams struct {
	Email string
	Otp   string
	Now   time.Time
}

// GetActiveOtpToken finds an unused, unexpired token matching the code.
func (q *Queries) GetActiveOtpToken(ctx context.Context, arg GetActiveOtpTokenParams) (OtpToken, error) {
	var t OtpToken
	err := q.db.QueryRow(ctx, `
		SELECT `+otpColumns+`
		FROM otp_tokens
		WHERE email = $1 AND otp = $2 AND used = false AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`,
		arg.Email, arg.Otp, arg.Now,
	).Scan(&t.ID, &t.Email, &t.Otp, &t.CreatedAt, &t.ExpiresAt, &t.Used)
	return t, err
}

func (q *Queries) MarkOtpTokenUsed(ctx context.Context, email string) error {
	_, err := q.db.Exec(ctx, `UPDATE otp_tokens SET used = true WHERE email = $1`, email)
	return err
}

// DeleteUnusedOtpTokens clears pending codes before issuing a fresh one.
func (q *Queries) DeleteUnusedOtpTokens(ctx context.Context, email string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM otp_tokens WHERE email = $1 AND used = false`, email)
	return err
}

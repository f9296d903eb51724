package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/v2lunch/api/internal/database"
)

// OtpTTL is how long a verification code stays valid.
const OtpTTL = 15 * time.Minute

// Errors returned by the OTP service.
var (
	ErrOtpInvalid = errors.New("verification code is invalid or expired")
)

// OtpStore defines the DB methods needed for OTP flows.
// Satisfied by *database.Queries; narrow interface for testability.
type OtpStore interface {
	CreateOtpToken(ctx context.Context, arg database.CreateOtpTokenParams) (database.OtpToken, error)
	GetActiveOtpToken(ctx context.Context, arg database.GetActiveOtpTokenParams) (database.OtpToken, error)
	MarkOtpTokenUsed(ctx context.Context, email string) error
	DeleteUnusedOtpTokens(ctx context.Context, email string) error
}

// OtpService issues and verifies email verification codes.
type OtpService struct {
	store OtpStore
	now   func() time.Time
}

func NewOtpService(store OtpStore) *OtpService {
	return &OtpService{store: store, now: time.Now}
}

// Issue invalidates any pending codes for the email and stores a fresh
// six-digit one. The caller is responsible for sending it.
func (s *OtpService) Issue(ctx context.Context, email string) (string, error) {
	if err := s.store.DeleteUnusedOtpTokens(ctx, email); err != nil {
		return "", fmt.Errorf("delete pending codes: %w", err)
	}
	code, err := GenerateOtp()
	if err != nil {
		return "", err
	}
	if _, err := s.store.CreateOtpToken(ctx, database.CreateOtpTokenParams{
		Email:     email,
		Otp:       code,
		ExpiresAt: s.now().Add(OtpTTL),
	}); err != nil {
		return "", fmt.Errorf("create otp token: %w", err)
	}
	return code, nil
}

// Verify consumes a code: it must be unused and unexpired, and all
// codes for the email are marked used on success.
func (s *OtpService) Verify(ctx context.Context, email, code string) error {
	_, err := s.store.GetActiveOtpToken(ctx, database.GetActiveOtpTokenParams{
		Email: email,
		Otp:   code,
		Now:   s.now(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOtpInvalid
		}
		return fmt.Errorf("get otp token: %w", err)
	}
	if err := s.store.MarkOtpTokenUsed(ctx, email); err != nil {
		return fmt.Errorf("mark otp used: %w", err)
	}
	return nil
}

// GenerateOtp returns a random six-digit code.
func GenerateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

const tempPasswordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTempPassword returns an eight-character random password for
// the forgot-password flow.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, 8)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordChars))))
		if err != nil {
			return "", fmt.Errorf("generate temp password: %w", err)
		}
		buf[i] = tempPasswordChars[n.Int64()]
	}
	return string(buf), nil
}

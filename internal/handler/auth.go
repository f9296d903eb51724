package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"github.com/v2lunch/api/internal/auth"
	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/mail"
	"github.com/v2lunch/api/internal/middleware"
	"github.com/v2lunch/api/internal/service"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByPhone(ctx context.Context, phone string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error)
	UpdateUserPassword(ctx context.Context, arg database.UpdateUserPasswordParams) error
}

// AuthHandler handles login, OTP registration and account management.
type AuthHandler struct {
	store     AuthStore
	otp       *service.OtpService
	mailer    mail.Sender
	codec     *cart.Codec
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, otp *service.OtpService, mailer mail.Sender, codec *cart.Codec, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, otp: otp, mailer: mailer, codec: codec, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/resend-otp", h.ResendOtp)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/logout", h.Logout)
}

// RegisterAuthedRoutes registers the account endpoints.
func (h *AuthHandler) RegisterAuthedRoutes(r chi.Router) {
	r.Get("/my-account", h.MyAccount)
	r.Put("/my-account", h.UpdateProfile)
	r.Put("/my-account/password", h.ChangePassword)
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	AltPhone string `json:"alt_phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Otp string `json:"otp"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	AltPhone *string   `json:"alt_phone"`
	Address  string    `json:"address"`
	IsAdmin  bool      `json:"is_admin"`
}

func toUserResponse(u database.User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Address:  u.Address,
		IsAdmin:  u.IsAdmin,
	}
	if u.AltPhone.Valid {
		resp.AltPhone = &u.AltPhone.String
	}
	return resp
}

// --- Handlers ---

// Login checks credentials and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, user.ID, user.FullName, user.IsAdmin)
	if err != nil {
		log.Printf("ERROR: generate token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	redirect := "/"
	if user.IsAdmin {
		redirect = "/admin"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":    token,
		"user":     toUserResponse(user),
		"redirect": redirect,
	})
}

// Register validates the form, parks it behind an email verification
// code, and mails the code. The account is only created once the code
// is confirmed.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)

	if req.FullName == "" || req.Email == "" || req.Phone == "" || req.Address == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "all fields are required"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 6 characters"})
		return
	}

	if _, err := h.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeRedirect(w, http.StatusConflict, "An account with this email already exists", "warning", "/login")
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: get user by email: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if _, err := h.store.GetUserByPhone(r.Context(), req.Phone); err == nil {
		writeRedirect(w, http.StatusConflict, "An account with this phone number already exists", "warning", "/login")
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: get user by phone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	code, err := h.otp.Issue(r.Context(), req.Email)
	if err != nil {
		log.Printf("ERROR: issue otp: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.mailer.Send(req.Email, "Verify your email", mail.OtpBody(req.FullName, code)); err != nil {
		log.Printf("ERROR: send otp mail: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not send verification email"})
		return
	}

	// The pending registration rides the wizard cookie until the code
	// is confirmed. Only the hash of the password is stored.
	state := h.codec.Read(r)
	state.PendingRegistration = &cart.PendingRegistration{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		AltPhone: strings.TrimSpace(req.AltPhone),
		Address:  req.Address,
		Password: string(hash),
	}
	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeRedirect(w, http.StatusOK, "We sent a verification code to your email", "info", "/verify-email")
}

// VerifyEmail confirms the code, creates the account and signs the
// user in.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state := h.codec.Read(r)
	pending := state.PendingRegistration
	if pending == nil {
		writeRedirect(w, http.StatusConflict, "Please register first", "warning", "/register")
		return
	}

	if err := h.otp.Verify(r.Context(), pending.Email, strings.TrimSpace(req.Otp)); err != nil {
		if errors.Is(err, service.ErrOtpInvalid) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "verification code is invalid or expired"})
			return
		}
		log.Printf("ERROR: verify otp: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	altPhone := pgtype.Text{}
	if pending.AltPhone != "" {
		altPhone = pgtype.Text{String: pending.AltPhone, Valid: true}
	}
	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		FullName:     pending.FullName,
		Email:        pending.Email,
		Phone:        pending.Phone,
		AltPhone:     altPhone,
		Address:      pending.Address,
		PasswordHash: pending.Password,
	})
	if err != nil {
		log.Printf("ERROR: create user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	state.PendingRegistration = nil
	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
	}

	token, err := auth.GenerateToken(h.jwtSecret, user.ID, user.FullName, user.IsAdmin)
	if err != nil {
		log.Printf("ERROR: generate token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Your account is ready",
		"category": "success",
		"redirect": "/",
		"token":    token,
		"user":     toUserResponse(user),
	})
}

// ResendOtp issues a fresh code for the pending registration.
func (h *AuthHandler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	state := h.codec.Read(r)
	pending := state.PendingRegistration
	if pending == nil {
		writeRedirect(w, http.StatusConflict, "Please register first", "warning", "/register")
		return
	}

	code, err := h.otp.Issue(r.Context(), pending.Email)
	if err != nil {
		log.Printf("ERROR: issue otp: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.mailer.Send(pending.Email, "Verify your email", mail.OtpBody(pending.FullName, code)); err != nil {
		log.Printf("ERROR: send otp mail: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not send verification email"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "A new code is on its way"})
}

// ForgotPassword mails a temporary password. The response does not
// reveal whether the email exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	neutral := func() {
		writeRedirect(w, http.StatusOK, "If that email is registered, a temporary password is on its way", "info", "/login")
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			neutral()
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tempPassword, err := service.GenerateTempPassword()
	if err != nil {
		log.Printf("ERROR: generate temp password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), database.UpdateUserPasswordParams{
		ID:           user.ID,
		PasswordHash: string(hash),
	}); err != nil {
		log.Printf("ERROR: update password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.mailer.Send(user.Email, "Your temporary password", mail.TempPasswordBody(user.FullName, tempPassword)); err != nil {
		log.Printf("ERROR: send temp password mail: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not send email"})
		return
	}

	neutral()
}

// Logout clears the wizard cookie. Tokens are stateless, so the client
// drops its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.codec.Clear(w)
	writeRedirect(w, http.StatusOK, "You have been signed out", "info", "/")
}

// MyAccount returns the signed-in user's profile.
func (h *AuthHandler) MyAccount(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile changes name, phone and address.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if req.FullName == "" || req.Phone == "" || req.Address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, phone and address are required"})
		return
	}

	user, err := h.store.UpdateUserProfile(r.Context(), database.UpdateUserProfileParams{
		ID:       claims.UserID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: update profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"user":    toUserResponse(user),
	})
}

// ChangePassword verifies the current password before setting the new
// one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.NewPassword) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 6 characters"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "current password is incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), database.UpdateUserPasswordParams{
		ID:           user.ID,
		PasswordHash: string(hash),
	}); err != nil {
		log.Printf("ERROR: update password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

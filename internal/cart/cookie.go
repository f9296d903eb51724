package cart

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the wizard state travels in.
const CookieName = "wizard_state"

const cookieTTL = 24 * time.Hour

type stateClaims struct {
	State State `json:"state"`
	jwt.RegisteredClaims
}

// Codec signs wizard state into a cookie and reads it back. A missing,
// expired or tampered cookie decodes to a fresh empty state rather
// than an error, so the wizard always has something to work with.
type Codec struct {
	secret string
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: secret}
}

// Read returns the state carried by the request, or a fresh one.
func (c *Codec) Read(r *http.Request) *State {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return &State{}
	}
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(c.secret), nil
	})
	if err != nil || !token.Valid {
		return &State{}
	}
	return &claims.State
}

// Write signs the state and sets it on the response.
func (c *Codec) Write(w http.ResponseWriter, state *State) error {
	claims := stateClaims{
		State: *state,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cookieTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the wizard cookie.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

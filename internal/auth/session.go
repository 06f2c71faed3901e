package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "freight_session"
	DefaultTTL        = 7 * 24 * time.Hour
	issuer            = "freight-order-service"
)

var ErrNoSession = errors.New("no session")

// Principal is the authenticated caller. Role is resolved from the user row
// on every request, so it follows promotions to driver immediately.
type Principal struct {
	UserID int64
	Role   string
}

func (p *Principal) IsAdmin() bool  { return p != nil && p.Role == "admin" }
func (p *Principal) IsDriver() bool { return p != nil && p.Role == "driver" }
func (p *Principal) IsClient() bool { return p != nil && p.Role == "client" }

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// Sessions issues and verifies HS256-signed session cookies.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	CookieName string
	Secure     bool

	now func() time.Time
}

func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, CookieName: DefaultCookieName, now: time.Now}, nil
}

// Issue signs a token whose subject is the user id.
func (s *Sessions) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return tok, nil
}

// Parse validates a token and returns the user id it was issued for.
func (s *Sessions) Parse(tokenStr string) (int64, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return 0, fmt.Errorf("parse session: %w", err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("parse session: invalid subject")
	}
	return id, nil
}

// SetCookie writes a fresh session cookie for the user.
func (s *Sessions) SetCookie(w http.ResponseWriter, userID int64) error {
	tok, err := s.Issue(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.ttl),
	})
	return nil
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// UserID reads and verifies the session cookie of r.
func (s *Sessions) UserID(r *http.Request) (int64, error) {
	c, err := r.Cookie(s.CookieName)
	if err != nil || c.Value == "" {
		return 0, ErrNoSession
	}
	return s.Parse(c.Value)
}

package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====
//
// Session issuance belongs to the auth service; this layer only validates the
// HS256 cookie it minted (Mint exists for tests and the dev seed flow).

const sessionCookieName = "session"

type SessionConfig struct {
	HMACSecret   []byte
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

type SessionManager struct{ cfg SessionConfig }

func NewSessionManager(secret string, secure bool, domain string, ttl time.Duration) *SessionManager {
	return &SessionManager{cfg: SessionConfig{
		HMACSecret:   []byte(secret),
		CookieDomain: domain, // "" is fine if you want host-only cookie
		SecureCookie: secure, // true in prod (TLS)
		TTL:          ttl,
	}}
}

// SessionClaims identify the signed-in user. SessionID keys the redis
// pending-payment pointer so parallel browser sessions do not trample each
// other's checkout.
type SessionClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) IsAdmin() bool { return c.Role == "admin" }

func (s *SessionManager) Mint(w http.ResponseWriter, userID, sessionID, role string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return signed, nil
}

func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return s.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	// Cookie
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return s.parse(c.Value)
	}
	return nil, errors.New("missing token")
}

func (s *SessionManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, errors.New("incomplete claims")
	}
	return claims, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL bounds how long a login remains valid before the project has
// to authenticate again.
const SessionTTL = 12 * time.Hour

// CookieName is the session cookie carrying the signed token.
const CookieName = "budgeting_session"

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims binds a token to a project login.
type SessionClaims struct {
	Login string `json:"login"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies signed session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: SessionTTL}
}

// Issue returns a signed token for the authenticated project.
func (m *SessionManager) Issue(p *Project) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Login: p.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.Name,
			Issuer:    "budgeting",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a token and returns its claims. The claim ID doubles as a
// stable per-session key for the delete flow.
func (m *SessionManager) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Login == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSessionToken is returned when a session cookie cannot be verified.
var ErrInvalidSessionToken = errors.New("security: invalid session token")

// SessionClaims is the signed payload carried by the session cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SignSessionID signs the opaque session id so the cookie cannot be forged.
func SignSessionID(secret, sessionID string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("security: missing secret")
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("security: missing session id")
	}
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign session: %w", errSign)
	}
	return signed, nil
}

// ParseSessionID verifies a signed session cookie and returns its session id.
func ParseSessionID(secret, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.TrimSpace(secret) == "" {
		return "", ErrInvalidSessionToken
	}
	var claims SessionClaims
	parsed, errParse := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errParse != nil || !parsed.Valid {
		return "", ErrInvalidSessionToken
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.SessionID, nil
}

// ErrInvalidAdminToken is returned when an admin bearer token cannot be verified.
var ErrInvalidAdminToken = errors.New("security: invalid admin token")

// AdminClaims is the payload of an admin API bearer token.
type AdminClaims struct {
	UserID uint64 `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SignAdminToken issues a bearer token for the admin API.
func SignAdminToken(secret string, userID uint64, email string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("security: missing secret")
	}
	claims := AdminClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "admin",
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign admin token: %w", errSign)
	}
	return signed, nil
}

// ParseAdminToken verifies an admin bearer token.
func ParseAdminToken(secret, token string) (*AdminClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.TrimSpace(secret) == "" {
		return nil, ErrInvalidAdminToken
	}
	var claims AdminClaims
	parsed, errParse := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject("admin"))
	if errParse != nil || !parsed.Valid || claims.UserID == 0 {
		return nil, ErrInvalidAdminToken
	}
	return &claims, nil
}

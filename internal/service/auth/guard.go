// Package auth verifies the bearer tokens attached to HTTP requests.
// Tokens are HS256 JWTs carrying the user id and role; the guard only
// validates and parses, it never mints tokens for production flows.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the token payload. Role mirrors the directory role at the time
// the token was issued.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Guard struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewGuard(secret, issuer string, ttl time.Duration) *Guard {
	return &Guard{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// VerifyToken parses and validates a bearer token, returning the caller's
// id and role.
func (g *Guard) VerifyToken(token string) (uuid.UUID, types.UserRole, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithIssuer(g.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", ErrTokenExpired
		}
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: bad user id", ErrInvalidToken)
	}
	return id, types.UserRole(claims.Role), nil
}

// Issue mints a token for the given user. Exposed for the demo login
// endpoint and for tests.
func (g *Guard) Issue(userID uuid.UUID, role types.UserRole, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID.String(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seedbotics/fieldgate/internal/domain/user"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 access tokens. It is both the token
// mint used by the auth procedures and a Resolver for the request pipeline.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

var _ Resolver = (*JWTManager)(nil)

// NewJWTManager builds a manager with the given signing secret and token TTL.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), issuer: "fieldgate", ttl: ttl}
}

// Issue mints a signed token for the user, returning the token and its expiry.
func (m *JWTManager) Issue(u user.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Resolve verifies the token signature and expiry and returns the embedded
// identity. No store lookup is needed; the claims are self-contained.
func (m *JWTManager) Resolve(_ context.Context, token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(m.issuer))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrUnresolvable
	}
	return Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

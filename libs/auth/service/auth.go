// Package service issues and validates the HS256 access tokens used by the API
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognised in access tokens
const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"
)

const accessTokenType = "access"

// ErrInvalidToken is returned for any token that fails validation
var ErrInvalidToken = errors.New("invalid token")

// RoleRank orders roles so that a higher rank includes the permissions of a lower one.
// Unknown roles rank zero.
func RoleRank(role string) int {
	switch role {
	case RoleLearner:
		return 1
	case RoleAdmin:
		return 2
	default:
		return 0
	}
}

// Claims is the validated content of an access token
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            []byte(secret),
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// GenerateAccessToken signs an access token carrying the user ID and role.
// It also returns the expiry so callers can report it.
func (tg *TokenGenerator) GenerateAccessToken(userID, role string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("user id is required")
	}

	now := tg.now()
	expiresAt := now.Add(tg.accessTokenExpiry)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
		"type": accessTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tg.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, time.Unix(expiresAt.Unix(), 0), nil
}

// ValidateAccessToken verifies signature, expiry and type, and returns the claims
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tg.secret, nil
	}, jwt.WithTimeFunc(tg.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}

	if tokenType, _ := claims["type"].(string); tokenType != accessTokenType {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: subject not found in token", ErrInvalidToken)
	}

	role, _ := claims["role"].(string)
	if RoleRank(role) == 0 {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: exp not found in token", ErrInvalidToken)
	}

	return &Claims{UserID: userID, Role: role, ExpiresAt: exp.Time}, nil
}

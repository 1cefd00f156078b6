package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TableClaims binds the bearer to a single table
type TableClaims struct {
	TableID string `json:"table_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 table tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a token granting control of tableID
func (m *TokenManager) Issue(tableID string) (string, error) {
	now := m.now()
	claims := &TableClaims{
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tableID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign table token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the claims
func (m *TokenManager) Validate(tokenString string) (*TableClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TableClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*TableClaims); ok && token.Valid && claims.TableID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Authorize validates tokenString and checks it was issued for tableID
func (m *TokenManager) Authorize(tokenString, tableID string) error {
	claims, err := m.Validate(tokenString)
	if err != nil {
		return err
	}
	if claims.TableID != tableID {
		return fmt.Errorf("%w: token issued for another table", ErrInvalidToken)
	}
	return nil
}

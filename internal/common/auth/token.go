// Package auth issues and verifies staff session tokens and password hashes.
package auth

import (
	"fmt"
	"time"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the JWT payload carried by a staff session.
type Claims struct {
	Role     models.Role `json:"role"`
	BranchID string      `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token for the actor and its expiry.
func (m *TokenManager) Issue(actor models.Actor) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Role:     actor.Role,
		BranchID: actor.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.StaffID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses a token and returns the actor it was issued for.
func (m *TokenManager) Verify(tokenString string) (models.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return models.Actor{}, apperrors.NewAuthenticationError(err.Error())
	}
	if !token.Valid {
		return models.Actor{}, apperrors.NewAuthenticationError("token is not valid")
	}
	if !claims.VerifyIssuer(m.issuer, true) {
		return models.Actor{}, apperrors.NewAuthenticationError("unexpected token issuer")
	}
	if claims.Subject == "" {
		return models.Actor{}, apperrors.NewAuthenticationError("token has no subject")
	}

	return models.Actor{StaffID: claims.Subject, Role: claims.Role, BranchID: claims.BranchID}, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the session token lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the session token claims: the account's stable identifier as
// subject plus its role name.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints signed, time-bounded session tokens for authenticated
// accounts. The signing key is process-wide configuration loaded once at
// startup; the issuer itself is stateless and safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer creates a TokenIssuer. The signing key is required; a
// non-positive TTL falls back to DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration, issuer string) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing key is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, issuer: issuer}, nil
}

// Issue mints a signed HS256 token for the account. The account must
// already have passed verification; Issue has no side effects beyond token
// creation.
func (i *TokenIssuer) Issue(account *Account, roleName string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Parse verifies a token's signature and expiry and returns its claims.
// Invalid, tampered, and expired tokens all wrap ErrUnauthorized.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").
			With("reason", err.Error()).
			Wrap(ErrUnauthorized)
	}
	if !token.Valid {
		return nil, oops.Code("TOKEN_INVALID").Wrap(ErrUnauthorized)
	}
	return claims, nil
}

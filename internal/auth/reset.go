// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes  = 32        // 32 bytes = 64 hex chars
	ResetTokenExpiry = time.Hour // fixed window from creation, no sliding extension
)

// ResetToken is a single-use, time-bounded credential authorizing one
// password change. A token is valid only while Used is false and the expiry
// has not passed. Consumed tokens are kept and marked used, never deleted.
type ResetToken struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// NewResetToken creates a validated ResetToken bound to an account.
func NewResetToken(accountID ulid.ULID, token string, expiresAt time.Time) (*ResetToken, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("RESET_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if token == "" {
		return nil, oops.Code("RESET_INVALID_TOKEN").Errorf("token value cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("RESET_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &ResetToken{
		ID:        ulid.Make(),
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
		Used:      false,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the token's expiry has passed.
func (t *ResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsExpiredAt returns true if the token would be expired at the given time.
// Useful for testing with deterministic time values.
func (t *ResetToken) IsExpiredAt(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// GenerateResetToken creates a cryptographically random opaque token value.
func GenerateResetToken() (string, error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", ResetTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(tokenBytes), nil
}

// ResetTokenRepository manages reset token persistence.
type ResetTokenRepository interface {
	// Create stores a new reset token.
	Create(ctx context.Context, token *ResetToken) error

	// GetByToken retrieves a reset token by its opaque value.
	GetByToken(ctx context.Context, token string) (*ResetToken, error)

	// MarkUsed flags a reset token as consumed.
	MarkUsed(ctx context.Context, id ulid.ULID) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/rotaflex/rotaflex/internal/observability"
)

// ResetRequestResult is the success payload of RequestReset: the account's
// public profile fields plus the raw token. Out-of-band delivery of the
// token is the caller's responsibility.
type ResetRequestResult struct {
	Name      string
	Email     string
	CPF       string
	Role      string
	Token     string
	ExpiresAt time.Time
}

// PasswordResetService handles the forgot/reset password flow.
type PasswordResetService struct {
	accounts AccountRepository
	roles    RoleRepository
	tokens   ResetTokenRepository
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewPasswordResetService creates a PasswordResetService.
func NewPasswordResetService(accounts AccountRepository, roles RoleRepository, tokens ResetTokenRepository, hasher PasswordHasher) (*PasswordResetService, error) {
	return NewPasswordResetServiceWithLogger(accounts, roles, tokens, hasher, slog.Default())
}

// NewPasswordResetServiceWithLogger creates a PasswordResetService with an
// explicit logger.
func NewPasswordResetServiceWithLogger(accounts AccountRepository, roles RoleRepository, tokens ResetTokenRepository, hasher PasswordHasher, logger *slog.Logger) (*PasswordResetService, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if roles == nil {
		return nil, oops.Errorf("roles repository is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("tokens repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &PasswordResetService{
		accounts: accounts,
		roles:    roles,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// RequestReset creates a single-use reset token for the account matched by
// the identifier. An identifier containing "@" resolves by email, anything
// else by CPF; fails with ErrNotFound when no account matches. The token
// expires exactly one hour after creation.
func (s *PasswordResetService) RequestReset(ctx context.Context, identifier string) (*ResetRequestResult, error) {
	var account *Account
	var err error
	if strings.Contains(identifier, "@") {
		account, err = s.accounts.GetByEmail(ctx, identifier)
	} else {
		account, err = s.accounts.GetByCPF(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.RecordReset("not_found")
			return nil, oops.Code("ACCOUNT_NOT_FOUND").
				Wrapf(ErrNotFound, "no account for identifier")
		}
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "look up account").
			Wrap(err)
	}

	token, err := GenerateResetToken()
	if err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	reset, err := NewResetToken(account.ID, token, time.Now().Add(ResetTokenExpiry))
	if err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "create reset token").
			Wrap(err)
	}

	if err := s.tokens.Create(ctx, reset); err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "persist reset token").
			Wrap(err)
	}

	role, err := s.roles.GetByID(ctx, account.RoleID)
	if err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "resolve role").
			With("role_id", account.RoleID).
			Wrap(err)
	}

	observability.RecordReset("requested")
	s.logger.Info("password reset requested",
		"account_id", account.ID.String(),
		"expires_at", reset.ExpiresAt)

	return &ResetRequestResult{
		Name:      account.Username,
		Email:     account.Email,
		CPF:       account.CPF,
		Role:      role.Name,
		Token:     token,
		ExpiresAt: reset.ExpiresAt,
	}, nil
}

// ConsumeReset consumes a reset token exactly once and stores the new
// secret's hash on the owning account. Fails with ErrNotFound if the token
// is unknown, and with ErrBadRequest if it was already used or has expired;
// the used check runs before the expiry check, and both apply regardless of
// the other.
func (s *PasswordResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return oops.Code("RESET_PASSWORD_EMPTY").
			Wrapf(ErrBadRequest, "new password cannot be empty")
	}

	reset, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.RecordReset("rejected")
			return oops.Code("RESET_TOKEN_INVALID").
				Wrapf(ErrNotFound, "reset token not found")
		}
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "look up token").
			Wrap(err)
	}

	if reset.Used {
		observability.RecordReset("rejected")
		return oops.Code("RESET_TOKEN_USED").
			Wrapf(ErrBadRequest, "reset token already used")
	}
	if reset.IsExpired() {
		observability.RecordReset("rejected")
		return oops.Code("RESET_TOKEN_EXPIRED").
			Wrapf(ErrBadRequest, "reset token expired")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.accounts.UpdatePassword(ctx, reset.AccountID, passwordHash); err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "update password").
			With("account_id", reset.AccountID.String()).
			Wrap(err)
	}

	// Single-use is a hard invariant: failing to mark the token used is a
	// failure of the whole operation, not cleanup.
	if err := s.tokens.MarkUsed(ctx, reset.ID); err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "mark token used").
			With("token_id", reset.ID.String()).
			Wrap(err)
	}

	observability.RecordReset("consumed")
	s.logger.Info("password reset consumed",
		"account_id", reset.AccountID.String())
	return nil
}

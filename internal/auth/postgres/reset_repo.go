// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rotaflex/rotaflex/internal/auth"
)

// ResetTokenRepository implements auth.ResetTokenRepository using PostgreSQL.
type ResetTokenRepository struct {
	pool poolIface
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(pool poolIface) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

// Create stores a new reset token.
func (r *ResetTokenRepository) Create(ctx context.Context, token *auth.ResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reset_tokens (id, account_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		token.ID.String(),
		token.AccountID.String(),
		token.Token,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert reset token").
			With("account_id", token.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// GetByToken retrieves a reset token by its opaque value.
func (r *ResetTokenRepository) GetByToken(ctx context.Context, value string) (*auth.ResetToken, error) {
	var token auth.ResetToken
	var idStr, accountIDStr string

	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, token, expires_at, used, created_at
		FROM reset_tokens
		WHERE token = $1
	`, value).Scan(&idStr, &accountIDStr, &token.Token, &token.ExpiresAt, &token.Used, &token.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_GET_BY_TOKEN_FAILED").
			With("operation", "get reset token by value").
			Wrap(err)
	}

	token.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("RESET_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	token.AccountID, err = ulid.Parse(accountIDStr)
	if err != nil {
		return nil, oops.Code("RESET_CORRUPT_ID").With("account_id", accountIDStr).Wrap(err)
	}
	return &token, nil
}

// MarkUsed flags a reset token as consumed. Consumed tokens stay in the
// table; they are never deleted, only invalidated.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE reset_tokens SET used = TRUE WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("RESET_MARK_USED_FAILED").
			With("operation", "mark reset token used").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RESET_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

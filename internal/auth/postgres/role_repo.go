// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/rotaflex/rotaflex/internal/auth"
)

// RoleRepository implements auth.RoleRepository using PostgreSQL.
type RoleRepository struct {
	pool poolIface
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool poolIface) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetByID retrieves a role by its stable identifier.
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*auth.Role, error) {
	var role auth.Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_GET_BY_ID_FAILED").
			With("operation", "get role by id").
			With("id", id).
			Wrap(err)
	}
	return &role, nil
}

// Ensure creates the role row if it does not already exist. Safe to run on
// every startup; concurrent seeders converge on the same row.
func (r *RoleRepository) Ensure(ctx context.Context, role *auth.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO roles (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, role.ID, role.Name)
	if err != nil {
		return oops.Code("ROLE_ENSURE_FAILED").
			With("operation", "ensure role").
			With("id", role.ID).
			With("name", role.Name).
			Wrap(err)
	}
	return nil
}

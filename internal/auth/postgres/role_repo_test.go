// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaflex/rotaflex/internal/auth"
)

func TestRoleRepository_GetByID(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(`SELECT id, name FROM roles WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ADMIN"))

	repo := NewRoleRepository(mock)
	role, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), role.ID)
	assert.Equal(t, "ADMIN", role.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(`SELECT id, name FROM roles WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRoleRepository(mock)
	_, err := repo.GetByID(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_Ensure(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectExec(`INSERT INTO roles`).
		WithArgs(int64(2), "ADMINISTRATIVO").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRoleRepository(mock)
	err := repo.Ensure(context.Background(), &auth.Role{ID: 2, Name: "ADMINISTRATIVO"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_Ensure_ExistingRowIsNoOp(t *testing.T) {
	mock := newMockPool(t)

	// ON CONFLICT DO NOTHING reports zero rows; still a success.
	mock.ExpectExec(`INSERT INTO roles`).
		WithArgs(int64(1), "ADMIN").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewRoleRepository(mock)
	err := repo.Ensure(context.Background(), &auth.Role{ID: 1, Name: "ADMIN"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rotaflex/rotaflex/internal/auth"
)

const accountColumns = `id, username, surname, password_hash, email, cpf,
	       phone, postal_code, street, number, complement, district,
	       city, state, gender, alert_opt_in, active, role_id,
	       created_at, updated_at`

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account. A duplicate CPF violates the unique
// constraint and is surfaced as auth.ErrConflict, which is what resolves
// two concurrent registrations racing on the same CPF.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, username, surname, password_hash, email, cpf,
			phone, postal_code, street, number, complement, district,
			city, state, gender, alert_opt_in, active, role_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		account.ID.String(),
		account.Username,
		account.Surname,
		account.PasswordHash,
		account.Email,
		account.CPF,
		account.Phone,
		account.PostalCode,
		account.Street,
		account.Number,
		account.Complement,
		account.District,
		account.City,
		account.State,
		account.Gender,
		account.AlertOptIn,
		account.Active,
		account.RoleID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_CPF_TAKEN").
				With("cpf", account.CPF).
				Wrapf(auth.ErrConflict, "account with this cpf already exists")
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username (case-insensitive).
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(username) = LOWER($1)`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_USERNAME_FAILED").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return account, nil
}

// GetByCPF retrieves an account by CPF.
func (r *AccountRepository) GetByCPF(ctx context.Context, cpf string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE cpf = $1`, cpf)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("cpf", cpf).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_CPF_FAILED").
			With("operation", "get account by cpf").
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// Update updates an existing account.
func (r *AccountRepository) Update(ctx context.Context, account *auth.Account) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			username = $2,
			surname = $3,
			password_hash = $4,
			email = $5,
			cpf = $6,
			phone = $7,
			postal_code = $8,
			street = $9,
			number = $10,
			complement = $11,
			district = $12,
			city = $13,
			state = $14,
			gender = $15,
			alert_opt_in = $16,
			active = $17,
			role_id = $18,
			updated_at = $19
		WHERE id = $1
	`,
		account.ID.String(),
		account.Username,
		account.Surname,
		account.PasswordHash,
		account.Email,
		account.CPF,
		account.Phone,
		account.PostalCode,
		account.Street,
		account.Number,
		account.Complement,
		account.District,
		account.City,
		account.State,
		account.Gender,
		account.AlertOptIn,
		account.Active,
		account.RoleID,
		account.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update account").
			With("id", account.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", account.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password hash for an account.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id.String(), passwordHash)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAccount scans a single account row.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var account auth.Account
	var idStr string

	err := row.Scan(
		&idStr,
		&account.Username,
		&account.Surname,
		&account.PasswordHash,
		&account.Email,
		&account.CPF,
		&account.Phone,
		&account.PostalCode,
		&account.Street,
		&account.Number,
		&account.Complement,
		&account.District,
		&account.City,
		&account.State,
		&account.Gender,
		&account.AlertOptIn,
		&account.Active,
		&account.RoleID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}
	return &account, nil
}

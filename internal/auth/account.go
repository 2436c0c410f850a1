// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CPFLength is the length of a Brazilian CPF with punctuation stripped.
const CPFLength = 11

// Profile holds the mutable profile fields of an account. Registration and
// profile updates overwrite the whole set.
type Profile struct {
	Username   string
	Surname    string
	Email      string
	CPF        string
	Phone      string
	PostalCode string
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	Gender     string
	AlertOptIn bool
}

// Account represents a registered user. Accounts are never hard-deleted;
// deactivation clears the Active flag and a later registration with the
// same CPF reactivates the row.
type Account struct {
	Profile

	ID           ulid.ULID
	PasswordHash string
	Active       bool
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount creates a validated, active Account. The password hash must
// already be computed; plaintext secrets never reach this constructor.
func NewAccount(profile Profile, passwordHash string, roleID int64) (*Account, error) {
	if profile.Username == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("username cannot be empty")
	}
	if profile.Surname == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("surname cannot be empty")
	}
	if len(profile.CPF) != CPFLength {
		return nil, oops.Code("ACCOUNT_INVALID").
			With("cpf_length", len(profile.CPF)).
			Errorf("cpf must be %d digits", CPFLength)
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &Account{
		Profile:      profile,
		ID:           ulid.Make(),
		PasswordHash: passwordHash,
		Active:       true,
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Implementations must reject a duplicate
	// CPF with an error wrapping ErrConflict; the unique constraint is the
	// line of defense against concurrent registrations.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByUsername retrieves an account by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// GetByCPF retrieves an account by CPF.
	GetByCPF(ctx context.Context, cpf string) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdatePassword updates only the password hash for an account.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}

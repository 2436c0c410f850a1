// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Hand-written repository mocks. Unset functions fail loudly so a test only
// exercises the calls it expects.

type mockAccountRepo struct {
	createFn         func(ctx context.Context, account *Account) error
	getByIDFn        func(ctx context.Context, id ulid.ULID) (*Account, error)
	getByUsernameFn  func(ctx context.Context, username string) (*Account, error)
	getByCPFFn       func(ctx context.Context, cpf string) (*Account, error)
	getByEmailFn     func(ctx context.Context, email string) (*Account, error)
	updateFn         func(ctx context.Context, account *Account) error
	updatePasswordFn func(ctx context.Context, id ulid.ULID, passwordHash string) error

	createCalls         int
	updateCalls         int
	updatePasswordCalls int
}

func (m *mockAccountRepo) Create(ctx context.Context, account *Account) error {
	m.createCalls++
	if m.createFn == nil {
		return oops.Errorf("unexpected call to Create")
	}
	return m.createFn(ctx, account)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id ulid.ULID) (*Account, error) {
	if m.getByIDFn == nil {
		return nil, oops.Errorf("unexpected call to GetByID")
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockAccountRepo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	if m.getByUsernameFn == nil {
		return nil, oops.Errorf("unexpected call to GetByUsername")
	}
	return m.getByUsernameFn(ctx, username)
}

func (m *mockAccountRepo) GetByCPF(ctx context.Context, cpf string) (*Account, error) {
	if m.getByCPFFn == nil {
		return nil, oops.Errorf("unexpected call to GetByCPF")
	}
	return m.getByCPFFn(ctx, cpf)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	if m.getByEmailFn == nil {
		return nil, oops.Errorf("unexpected call to GetByEmail")
	}
	return m.getByEmailFn(ctx, email)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *Account) error {
	m.updateCalls++
	if m.updateFn == nil {
		return oops.Errorf("unexpected call to Update")
	}
	return m.updateFn(ctx, account)
}

func (m *mockAccountRepo) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	m.updatePasswordCalls++
	if m.updatePasswordFn == nil {
		return oops.Errorf("unexpected call to UpdatePassword")
	}
	return m.updatePasswordFn(ctx, id, passwordHash)
}

type mockRoleRepo struct {
	getByIDFn func(ctx context.Context, id int64) (*Role, error)
	ensureFn  func(ctx context.Context, role *Role) error
}

func (m *mockRoleRepo) GetByID(ctx context.Context, id int64) (*Role, error) {
	if m.getByIDFn == nil {
		return nil, oops.Errorf("unexpected call to GetByID")
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockRoleRepo) Ensure(ctx context.Context, role *Role) error {
	if m.ensureFn == nil {
		return oops.Errorf("unexpected call to Ensure")
	}
	return m.ensureFn(ctx, role)
}

// seededRoleRepo resolves the whole closed role set, the common case for
// service tests.
func seededRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{
		getByIDFn: func(_ context.Context, id int64) (*Role, error) {
			rt, ok := RoleTypeFromID(id)
			if !ok {
				return nil, oops.Wrapf(ErrNotFound, "role not found")
			}
			return &Role{ID: rt.ID(), Name: rt.Name()}, nil
		},
	}
}

type mockResetTokenRepo struct {
	createFn     func(ctx context.Context, token *ResetToken) error
	getByTokenFn func(ctx context.Context, token string) (*ResetToken, error)
	markUsedFn   func(ctx context.Context, id ulid.ULID) error

	markUsedCalls int
}

func (m *mockResetTokenRepo) Create(ctx context.Context, token *ResetToken) error {
	if m.createFn == nil {
		return oops.Errorf("unexpected call to Create")
	}
	return m.createFn(ctx, token)
}

func (m *mockResetTokenRepo) GetByToken(ctx context.Context, token string) (*ResetToken, error) {
	if m.getByTokenFn == nil {
		return nil, oops.Errorf("unexpected call to GetByToken")
	}
	return m.getByTokenFn(ctx, token)
}

func (m *mockResetTokenRepo) MarkUsed(ctx context.Context, id ulid.ULID) error {
	m.markUsedCalls++
	if m.markUsedFn == nil {
		return oops.Errorf("unexpected call to MarkUsed")
	}
	return m.markUsedFn(ctx, id)
}

// mockHasher injects hashing failures; happy paths use a real BcryptHasher.
type mockHasher struct {
	hashFn         func(password string) (string, error)
	verifyFn       func(password, hash string) (bool, error)
	needsUpgradeFn func(hash string) bool
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFn == nil {
		return "", oops.Errorf("unexpected call to Hash")
	}
	return m.hashFn(password)
}

func (m *mockHasher) Verify(password, hash string) (bool, error) {
	if m.verifyFn == nil {
		return false, oops.Errorf("unexpected call to Verify")
	}
	return m.verifyFn(password, hash)
}

func (m *mockHasher) NeedsUpgrade(hash string) bool {
	if m.needsUpgradeFn == nil {
		return false
	}
	return m.needsUpgradeFn(hash)
}

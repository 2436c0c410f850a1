// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rotaflex/rotaflex/internal/observability"
)

// RegisterRequest carries the data for a registration or reactivation.
// RoleID is resolved against the closed role enumeration.
type RegisterRequest struct {
	Profile

	Password string
	RoleID   int64
}

// UpdateRequest carries the data for a profile update. RoleCode uses the
// strict small-integer mapping (1 = ADMIN, 2 = ADMINISTRATIVO).
type UpdateRequest struct {
	Profile

	RoleCode int
}

// RegisterOutcome distinguishes a fresh registration from the reactivation
// of a previously deactivated account. Reactivation is a success outcome,
// not an error.
type RegisterOutcome string

// Register outcomes.
const (
	OutcomeCreated     RegisterOutcome = "created"
	OutcomeReactivated RegisterOutcome = "reactivated"
)

// RegisterResult is the success payload of Register.
type RegisterResult struct {
	Account *Account
	Outcome RegisterOutcome
}

// Service provides account lifecycle and authentication operations. All
// operations are synchronous and safe to invoke concurrently for different
// accounts; same-account read-modify-write races are resolved by the store
// layer's constraints.
type Service struct {
	accounts AccountRepository
	roles    RoleRepository
	hasher   PasswordHasher
	issuer   *TokenIssuer
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(accounts AccountRepository, roles RoleRepository, hasher PasswordHasher, issuer *TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(accounts, roles, hasher, issuer, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(accounts AccountRepository, roles RoleRepository, hasher PasswordHasher, issuer *TokenIssuer, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if roles == nil {
		return nil, oops.Errorf("roles repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		accounts: accounts,
		roles:    roles,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}, nil
}

// Authenticate verifies a username/password pair and returns a signed
// session token. Fails with ErrNotFound if the account does not exist,
// ErrForbidden if it is inactive, and ErrUnauthorized on a secret mismatch.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	return s.authenticate(ctx, password, func() (*Account, error) {
		return s.accounts.GetByUsername(ctx, username)
	})
}

// AuthenticateCPF is the CPF entry point of Authenticate.
func (s *Service) AuthenticateCPF(ctx context.Context, cpf, password string) (string, error) {
	return s.authenticate(ctx, password, func() (*Account, error) {
		return s.accounts.GetByCPF(ctx, cpf)
	})
}

func (s *Service) authenticate(ctx context.Context, password string, lookup func() (*Account, error)) (string, error) {
	account, err := lookup()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.RecordLogin("not_found")
			return "", oops.Code("ACCOUNT_NOT_FOUND").
				Wrapf(ErrNotFound, "account not found")
		}
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "look up account").
			Wrap(err)
	}

	if !account.Active {
		observability.RecordLogin("inactive")
		return "", oops.Code("ACCOUNT_INACTIVE").
			Wrapf(ErrForbidden, "account is inactive")
	}

	valid, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		observability.RecordLogin("invalid_credentials")
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").
			Wrapf(ErrUnauthorized, "invalid credentials")
	}

	// Opportunistic hash upgrade when the stored hash uses weaker
	// parameters than currently configured. Login succeeds regardless.
	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			account.PasswordHash = newHash
			account.UpdatedAt = time.Now()
			if updErr := s.accounts.Update(ctx, account); updErr != nil {
				s.logger.Warn("password hash upgrade failed",
					"account_id", account.ID.String(),
					"error", updErr)
			}
		}
	}

	role, err := s.roles.GetByID(ctx, account.RoleID)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "resolve role").
			With("role_id", account.RoleID).
			Wrap(err)
	}

	token, err := s.issuer.Issue(account, role.Name)
	if err != nil {
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	observability.RecordLogin("success")
	return token, nil
}

// GetDetails retrieves an account by username. Pure lookup; fails with
// ErrNotFound if absent.
func (s *Service) GetDetails(ctx context.Context, username string) (*Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").
				With("username", username).
				Wrapf(ErrNotFound, "account not found: %s", username)
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}
	return account, nil
}

// Register creates a new active account, or reactivates a deactivated one
// matching the request's CPF. An active account with the same CPF is a
// conflict and is never mutated. The requested role is resolved against the
// closed enumeration; unknown identifiers fail with ErrBadRequest.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	roleType, ok := RoleTypeFromID(req.RoleID)
	if !ok {
		observability.RecordRegistration("rejected")
		return nil, oops.Code("ROLE_UNKNOWN").
			With("role_id", req.RoleID).
			Wrapf(ErrBadRequest, "unknown role id: %d", req.RoleID)
	}

	role, err := s.roles.GetByID(ctx, roleType.ID())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ROLE_NOT_FOUND").
				With("role_id", roleType.ID()).
				Wrapf(ErrNotFound, "role not seeded: %s", roleType.Name())
		}
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "resolve role").
			Wrap(err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	existing, err := s.accounts.GetByCPF(ctx, req.CPF)
	switch {
	case err == nil:
		if existing.Active {
			observability.RecordRegistration("conflict")
			return nil, oops.Code("ACCOUNT_ALREADY_ACTIVE").
				Wrapf(ErrConflict, "account already registered and active")
		}
		return s.reactivate(ctx, existing, req, passwordHash, role)

	case errors.Is(err, ErrNotFound):
		// No existing account; fall through to creation.

	default:
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "get account by cpf").
			Wrap(err)
	}

	account, err := NewAccount(req.Profile, passwordHash, role.ID)
	if err != nil {
		observability.RecordRegistration("rejected")
		return nil, oops.Code("ACCOUNT_INVALID").
			With("reason", err.Error()).
			Wrapf(ErrBadRequest, "invalid registration")
	}

	// A concurrent registration with the same CPF loses the race on the
	// unique constraint and surfaces as ErrConflict from the repository.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "create account").
			Wrap(err)
	}

	observability.RecordRegistration("created")
	s.logger.Info("account registered",
		"account_id", account.ID.String(),
		"role", role.Name)
	return &RegisterResult{Account: account, Outcome: OutcomeCreated}, nil
}

func (s *Service) reactivate(ctx context.Context, account *Account, req RegisterRequest, passwordHash string, role *Role) (*RegisterResult, error) {
	account.Profile = req.Profile
	account.PasswordHash = passwordHash
	account.RoleID = role.ID
	account.Active = true
	account.UpdatedAt = time.Now()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "reactivate account").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	observability.RecordRegistration("reactivated")
	s.logger.Info("account reactivated",
		"account_id", account.ID.String(),
		"role", role.Name)
	return &RegisterResult{Account: account, Outcome: OutcomeReactivated}, nil
}

// UpdateProfile overwrites an account's mutable profile fields and role.
// The role is resolved strictly from the small integer codes 1 and 2; any
// other value fails with ErrBadRequest and leaves the account untouched.
// The password hash, active flag, and creation timestamp are never touched.
func (s *Service) UpdateProfile(ctx context.Context, id ulid.ULID, req UpdateRequest) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ACCOUNT_NOT_FOUND").
				With("account_id", id.String()).
				Wrapf(ErrNotFound, "account not found")
		}
		return oops.Code("UPDATE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	var roleType RoleType
	switch req.RoleCode {
	case 1:
		roleType = RoleAdmin
	case 2:
		roleType = RoleAdministrative
	default:
		return oops.Code("ROLE_CODE_INVALID").
			With("role_code", req.RoleCode).
			Wrapf(ErrBadRequest, "invalid role code: %d", req.RoleCode)
	}

	role, err := s.roles.GetByID(ctx, roleType.ID())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("ROLE_NOT_FOUND").
				With("role_id", roleType.ID()).
				Wrapf(ErrNotFound, "role not seeded: %s", roleType.Name())
		}
		return oops.Code("UPDATE_FAILED").
			With("operation", "resolve role").
			Wrap(err)
	}

	account.Profile = req.Profile
	account.RoleID = role.ID
	account.UpdatedAt = time.Now()

	if err := s.accounts.Update(ctx, account); err != nil {
		return oops.Code("UPDATE_FAILED").
			With("operation", "update account").
			With("account_id", account.ID.String()).
			Wrap(err)
	}
	return nil
}

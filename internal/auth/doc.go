// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

// Package auth provides the account and authentication core for Rotaflex.
//
// # Domain Types
//
// Domain types (Account, Role, ResetToken) should be created using their
// respective constructors:
//   - NewAccount - creates an Account with a validated profile and password hash
//   - NewResetToken - creates a ResetToken bound to an account with an expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - authentication, registration, reactivation, profile updates
//   - PasswordResetService - the forgot/reset password flow
//
// Services are created with New*Service constructors that validate
// dependencies. Every failure they return wraps exactly one of the error
// kind sentinels in errors.go; callers branch with errors.Is.
package auth

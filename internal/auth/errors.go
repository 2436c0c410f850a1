// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import "errors"

// Error kinds. Every failure surfaced by the auth services wraps exactly one
// of these sentinels, alongside an oops code and a human-readable message.
// Callers distinguish kinds with errors.Is; the sentinel maps one-to-one to
// the transport status a caller would report (404, 401, 403, 409, 400).
var (
	// ErrNotFound is returned when a requested account, role, or token does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when a supplied secret does not match the
	// stored credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the account exists but is inactive.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a registration collides with an existing
	// active account.
	ErrConflict = errors.New("conflict")

	// ErrBadRequest is returned for unknown role codes and for reset tokens
	// that are already used or expired.
	ErrBadRequest = errors.New("bad request")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import "context"

// Role is a named permission class. The set of roles is closed and known at
// compile time; the rows behind RoleRepository are seeded once at startup
// and their identifiers never change.
type Role struct {
	ID   int64
	Name string
}

// RoleType enumerates the closed set of roles.
type RoleType int64

// Known roles. The identifiers are stable and match the seeded rows.
const (
	RoleAdmin          RoleType = 1
	RoleAdministrative RoleType = 2
)

// roleNames maps each RoleType to its unique name.
var roleNames = map[RoleType]string{
	RoleAdmin:          "ADMIN",
	RoleAdministrative: "ADMINISTRATIVO",
}

// ID returns the stable identifier of the role.
func (t RoleType) ID() int64 {
	return int64(t)
}

// Name returns the unique role name.
func (t RoleType) Name() string {
	return roleNames[t]
}

// Valid returns true if the RoleType is a member of the closed set.
func (t RoleType) Valid() bool {
	_, ok := roleNames[t]
	return ok
}

// RoleTypes returns all members of the closed set, in identifier order.
func RoleTypes() []RoleType {
	return []RoleType{RoleAdmin, RoleAdministrative}
}

// RoleTypeFromID resolves a role identifier against the closed set.
// It is total: unknown identifiers return ok=false instead of panicking.
func RoleTypeFromID(id int64) (RoleType, bool) {
	t := RoleType(id)
	return t, t.Valid()
}

// RoleRepository manages role persistence.
type RoleRepository interface {
	// GetByID retrieves a role by its stable identifier.
	GetByID(ctx context.Context, id int64) (*Role, error)

	// Ensure creates the role row if it does not already exist. Idempotent;
	// used by startup seeding.
	Ensure(ctx context.Context, role *Role) error
}

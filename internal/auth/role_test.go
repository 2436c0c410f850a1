// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rotaflex Contributors

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleType_Mapping(t *testing.T) {
	tests := []struct {
		roleType RoleType
		id       int64
		name     string
	}{
		{roleType: RoleAdmin, id: 1, name: "ADMIN"},
		{roleType: RoleAdministrative, id: 2, name: "ADMINISTRATIVO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, tt.roleType.ID())
			assert.Equal(t, tt.name, tt.roleType.Name())
			assert.True(t, tt.roleType.Valid())
		})
	}
}

func TestRoleTypeFromID(t *testing.T) {
	tests := []struct {
		name   string
		id     int64
		want   RoleType
		wantOK bool
	}{
		{name: "admin", id: 1, want: RoleAdmin, wantOK: true},
		{name: "administrative", id: 2, want: RoleAdministrative, wantOK: true},
		{name: "zero", id: 0, wantOK: false},
		{name: "unknown", id: 3, wantOK: false},
		{name: "negative", id: -1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RoleTypeFromID(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRoleTypes_CoversTheClosedSet(t *testing.T) {
	types := RoleTypes()
	assert.Len(t, types, 2)
	for _, rt := range types {
		assert.True(t, rt.Valid())
	}
}

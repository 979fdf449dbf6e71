package adminroles

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasses(t *testing.T) {
	require.NoError(t, Validate())
}

func TestEveryRoleHasCompleteVector(t *testing.T) {
	for _, role := range Roles() {
		v := GetPermissions(role)
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var decoded map[string]bool
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Len(t, decoded, len(Capabilities()), "role %s", role)
		for _, c := range Capabilities() {
			_, ok := decoded[string(c)]
			assert.True(t, ok, "role %s missing %s", role, c)
		}
	}
}

func TestEveryRoleHasLabel(t *testing.T) {
	seen := map[string]Role{}
	for _, role := range Roles() {
		label := Label(role)
		assert.NotEmpty(t, label, "role %s", role)
		if prev, dup := seen[label]; dup {
			t.Fatalf("label %q shared by %s and %s", label, prev, role)
		}
		seen[label] = role
	}
}

func TestHasPermissionMatchesVector(t *testing.T) {
	for _, role := range Roles() {
		v := GetPermissions(role)
		for _, c := range Capabilities() {
			assert.Equal(t, v.Has(c), HasPermission(role, c), "%s/%s", role, c)
		}
	}
}

func TestPrivilegeSpotChecks(t *testing.T) {
	assert.True(t, HasPermission(RoleSuperAdmin, CanManageSecurity))
	assert.False(t, HasPermission(RoleModerator, CanManageSecurity))
	assert.True(t, HasPermission(RoleModerator, CanManageCircles))
	assert.False(t, HasPermission(RoleCircleAdmin, CanManageUsers))
}

func TestSuperAdminGrantsEverything(t *testing.T) {
	assert.Equal(t, Capabilities(), GetPermissions(RoleSuperAdmin).Granted())
}

func TestDeriveAdminRole(t *testing.T) {
	cases := []struct {
		legacy LegacyRole
		want   Role
		ok     bool
	}{
		{LegacySuperAdmin, RoleSuperAdmin, true},
		{LegacyAdmin, RoleContentAdmin, true},
		{LegacyModerator, RoleModerator, true},
		{LegacyUser, "", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.legacy), func(t *testing.T) {
			got, ok := DeriveAdminRole(tc.legacy)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveAdminRolePanicsOnBypassedValue(t *testing.T) {
	assert.Panics(t, func() { DeriveAdminRole(LegacyRole("owner")) })
}

func TestLookupsPanicOnUnknownRole(t *testing.T) {
	assert.Panics(t, func() { GetPermissions(Role("root")) })
	assert.Panics(t, func() { Label(Role("root")) })
	assert.Panics(t, func() { HasPermission(RoleModerator, Capability("canFly")) })
}

func TestGetPermissionsReturnsIndependentCopies(t *testing.T) {
	first := GetPermissions(RoleModerator)
	first.CanManageSecurity = true
	second := GetPermissions(RoleModerator)
	assert.False(t, second.CanManageSecurity)
	assert.Equal(t, GetPermissions(RoleModerator), second)
}

func TestParseRole(t *testing.T) {
	got, err := ParseRole("  circle_admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleCircleAdmin, got)

	for _, miscased := range []string{"Circle_Admin", "Super_Admin", "MODERATOR"} {
		_, err = ParseRole(miscased)
		assert.ErrorIs(t, err, ErrUnknownRole, miscased)
	}

	_, err = ParseRole("admin")
	assert.True(t, errors.Is(err, ErrUnknownRole))
	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseCapability(t *testing.T) {
	got, err := ParseCapability("canManageSEO")
	require.NoError(t, err)
	assert.Equal(t, CanManageSEO, got)

	_, err = ParseCapability("canmanageseo")
	assert.ErrorIs(t, err, ErrUnknownCapability)
	assert.Panics(t, func() { MustParseCapability("canFly") })
}

func TestParseLegacyRole(t *testing.T) {
	for _, lr := range LegacyRoles() {
		got, err := ParseLegacyRole(string(lr))
		require.NoError(t, err)
		assert.Equal(t, lr, got)
	}
	_, err := ParseLegacyRole("content_admin")
	assert.ErrorIs(t, err, ErrUnknownLegacyRole)
	_, err = ParseLegacyRole("Admin")
	assert.ErrorIs(t, err, ErrUnknownLegacyRole)
}

func TestRoleUnmarshalRejectsUnknown(t *testing.T) {
	var payload struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user_admin"}`), &payload))
	assert.Equal(t, RoleUserAdmin, payload.Role)

	err := json.Unmarshal([]byte(`{"role":"owner"}`), &payload)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestValidateTablesCatchesMissingRow(t *testing.T) {
	perms := make(map[Role]PermissionVector, len(rolePermissions))
	for r, v := range rolePermissions {
		perms[r] = v
	}
	labels := make(map[Role]string, len(roleLabels))
	for r, l := range roleLabels {
		labels[r] = l
	}
	roles := append(Roles(), Role("community_admin"))

	err := validateTables(roles, perms, labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "community_admin has no permission row")
	assert.Contains(t, err.Error(), "community_admin has no label")

	delete(labels, RoleModerator)
	err = validateTables(Roles(), perms, labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderator has no label")
}

func TestMatrixOrder(t *testing.T) {
	defs := Matrix()
	require.Len(t, defs, len(Roles()))
	for i, role := range Roles() {
		assert.Equal(t, role, defs[i].Role)
		assert.Equal(t, Label(role), defs[i].Label)
		assert.Equal(t, GetPermissions(role), defs[i].Permissions)
	}
}

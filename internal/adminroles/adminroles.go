// Package adminroles holds the admin role and capability model: a static
// role to capability matrix, display labels and the mapping from the coarse
// authentication role onto an admin role.
//
// Lookups are total over the enumerations. Untrusted strings must go through
// ParseRole, ParseCapability or ParseLegacyRole first; passing a value that
// bypassed them is a programming error and panics.
package adminroles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRole indicates a string that is not an admin role.
	ErrUnknownRole = errors.New("adminroles: unknown role")
	// ErrUnknownCapability indicates a string that is not a capability.
	ErrUnknownCapability = errors.New("adminroles: unknown capability")
	// ErrUnknownLegacyRole indicates a string that is not a legacy user role.
	ErrUnknownLegacyRole = errors.New("adminroles: unknown legacy role")
)

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
}

// GetPermissions returns the complete permission vector for role.
func GetPermissions(role Role) PermissionVector {
	v, ok := rolePermissions[role]
	if !ok {
		panic(fmt.Sprintf("adminroles: no permissions for role %q", string(role)))
	}
	return v
}

// HasPermission reports whether role grants capability c.
func HasPermission(role Role, c Capability) bool {
	return GetPermissions(role).Has(c)
}

// Label returns the display label for role.
func Label(role Role) string {
	label, ok := roleLabels[role]
	if !ok {
		panic(fmt.Sprintf("adminroles: no label for role %q", string(role)))
	}
	return label
}

// DeriveAdminRole narrows a legacy role onto an admin role. The boolean is
// false when the user gets no admin access at all. A generic admin becomes a
// content admin.
func DeriveAdminRole(lr LegacyRole) (Role, bool) {
	switch lr {
	case LegacySuperAdmin:
		return RoleSuperAdmin, true
	case LegacyAdmin:
		return RoleContentAdmin, true
	case LegacyModerator:
		return RoleModerator, true
	case LegacyUser:
		return "", false
	}
	panic(fmt.Sprintf("adminroles: unhandled legacy role %q", string(lr)))
}

// ParseRole converts s into a Role or returns ErrUnknownRole. Role names are
// matched exactly; "Super_Admin" is not a role.
func ParseRole(s string) (Role, error) {
	candidate := Role(strings.TrimSpace(s))
	if _, ok := rolePermissions[candidate]; ok {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// ParseCapability converts s into a Capability or returns ErrUnknownCapability.
// Capability names are matched exactly.
func ParseCapability(s string) (Capability, error) {
	candidate := Capability(strings.TrimSpace(s))
	for _, c := range Capabilities() {
		if c == candidate {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

// MustParseCapability is ParseCapability for static configuration.
func MustParseCapability(s string) Capability {
	c, err := ParseCapability(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseLegacyRole converts s into a LegacyRole or returns ErrUnknownLegacyRole.
func ParseLegacyRole(s string) (LegacyRole, error) {
	candidate := LegacyRole(strings.TrimSpace(s))
	for _, lr := range LegacyRoles() {
		if lr == candidate {
			return lr, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLegacyRole, s)
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// String implements fmt.Stringer.
func (c Capability) String() string { return string(c) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Capability) UnmarshalText(text []byte) error {
	parsed, err := ParseCapability(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// String implements fmt.Stringer.
func (lr LegacyRole) String() string { return string(lr) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (lr *LegacyRole) UnmarshalText(text []byte) error {
	parsed, err := ParseLegacyRole(string(text))
	if err != nil {
		return err
	}
	*lr = parsed
	return nil
}

// RoleDefinition describes one row of the role matrix.
type RoleDefinition struct {
	Role        Role             `json:"role"`
	Label       string           `json:"label"`
	Permissions PermissionVector `json:"permissions"`
}

// Matrix returns every role with its label and permissions in display order.
func Matrix() []RoleDefinition {
	roles := Roles()
	defs := make([]RoleDefinition, 0, len(roles))
	for _, r := range roles {
		defs = append(defs, RoleDefinition{Role: r, Label: Label(r), Permissions: GetPermissions(r)})
	}
	return defs
}

// Package access turns the stored and asserted role strings of a user into
// a resolved admin role. It is the only place untrusted role strings are
// parsed; a value that fails to parse yields no admin access.
package access

import (
	"github.com/kindred-stories/kindred/internal/adminroles"
)

// Principal is the raw role data known about a user.
type Principal struct {
	UserID string
	Email  string
	// LegacyRole is the coarse role asserted by the auth service.
	LegacyRole string
	// AssignedRole is an explicit admin role stored for the user, if any.
	AssignedRole string
}

// Source explains how a resolution was reached.
type Source string

// Resolution sources.
const (
	SourceAssigned Source = "assigned"
	SourceDerived  Source = "derived"
	SourceNone     Source = "none"
	SourceInvalid  Source = "invalid"
)

// Resolution is the effective admin role of a user. OK is false when the
// user must not see any admin surface.
type Resolution struct {
	UserID string          `json:"user_id"`
	Role   adminroles.Role `json:"role,omitempty"`
	OK     bool            `json:"is_admin"`
	Source Source          `json:"source"`
}

// Permissions returns the capability vector of the resolved role. It must
// only be called when OK is true.
func (r Resolution) Permissions() adminroles.PermissionVector {
	return adminroles.GetPermissions(r.Role)
}

// Can reports whether the resolution grants c. No admin role grants nothing.
func (r Resolution) Can(c adminroles.Capability) bool {
	if !r.OK {
		return false
	}
	return adminroles.HasPermission(r.Role, c)
}

// Anomaly records a role string that failed to parse.
type Anomaly struct {
	UserID string
	Field  string
	Value  string
	Err    error
}

// Decide resolves p without side effects. An explicitly assigned role wins
// over the legacy role. The returned anomaly is non-nil when a stored value
// was rejected.
func Decide(p Principal) (Resolution, *Anomaly) {
	res := Resolution{UserID: p.UserID, Source: SourceNone}
	if p.AssignedRole != "" {
		role, err := adminroles.ParseRole(p.AssignedRole)
		if err != nil {
			res.Source = SourceInvalid
			return res, &Anomaly{UserID: p.UserID, Field: "admin_role", Value: p.AssignedRole, Err: err}
		}
		res.Role, res.OK, res.Source = role, true, SourceAssigned
		return res, nil
	}
	legacy, err := adminroles.ParseLegacyRole(p.LegacyRole)
	if err != nil {
		res.Source = SourceInvalid
		return res, &Anomaly{UserID: p.UserID, Field: "user_role", Value: p.LegacyRole, Err: err}
	}
	if role, ok := adminroles.DeriveAdminRole(legacy); ok {
		res.Role, res.OK, res.Source = role, true, SourceDerived
	}
	return res, nil
}

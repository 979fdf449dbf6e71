package adminroles

// Role identifies an administrative identity. The string form is persisted
// upstream and must not change.
type Role string

// Admin roles.
const (
	RoleSuperAdmin     Role = "super_admin"
	RoleContentAdmin   Role = "content_admin"
	RoleCircleAdmin    Role = "circle_admin"
	RoleUserAdmin      Role = "user_admin"
	RoleAnalyticsAdmin Role = "analytics_admin"
	RoleModerator      Role = "moderator"
)

// Roles lists every admin role in display order.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleContentAdmin,
		RoleCircleAdmin,
		RoleUserAdmin,
		RoleAnalyticsAdmin,
		RoleModerator,
	}
}

// Capability names a single permission flag.
type Capability string

// Capabilities granted to admin roles. Names are referenced by external
// configuration and JSON clients.
const (
	CanManageUsers         Capability = "canManageUsers"
	CanManageRoles         Capability = "canManageRoles"
	CanManagePosts         Capability = "canManagePosts"
	CanManageComments      Capability = "canManageComments"
	CanModerateContent     Capability = "canModerateContent"
	CanManageCircles       Capability = "canManageCircles"
	CanManageStories       Capability = "canManageStories"
	CanViewAnalytics       Capability = "canViewAnalytics"
	CanExportData          Capability = "canExportData"
	CanManageSEO           Capability = "canManageSEO"
	CanManageTheme         Capability = "canManageTheme"
	CanManageSettings      Capability = "canManageSettings"
	CanManageSecurity      Capability = "canManageSecurity"
	CanManageSubscriptions Capability = "canManageSubscriptions"
	CanManageNotifications Capability = "canManageNotifications"
	CanViewAuditLog        Capability = "canViewAuditLog"
	CanManageMedia         Capability = "canManageMedia"
)

// Capabilities lists every capability in canonical order.
func Capabilities() []Capability {
	return []Capability{
		CanManageUsers,
		CanManageRoles,
		CanManagePosts,
		CanManageComments,
		CanModerateContent,
		CanManageCircles,
		CanManageStories,
		CanViewAnalytics,
		CanExportData,
		CanManageSEO,
		CanManageTheme,
		CanManageSettings,
		CanManageSecurity,
		CanManageSubscriptions,
		CanManageNotifications,
		CanViewAuditLog,
		CanManageMedia,
	}
}

// LegacyRole is the coarse role produced by the authentication service.
type LegacyRole string

// Legacy user roles.
const (
	LegacyUser       LegacyRole = "user"
	LegacyModerator  LegacyRole = "moderator"
	LegacyAdmin      LegacyRole = "admin"
	LegacySuperAdmin LegacyRole = "super_admin"
)

// LegacyRoles lists every legacy role.
func LegacyRoles() []LegacyRole {
	return []LegacyRole{LegacyUser, LegacyModerator, LegacyAdmin, LegacySuperAdmin}
}

// PermissionVector holds one flag per Capability. It is a value type; every
// copy handed out is independent of the package tables.
type PermissionVector struct {
	CanManageUsers         bool `json:"canManageUsers"`
	CanManageRoles         bool `json:"canManageRoles"`
	CanManagePosts         bool `json:"canManagePosts"`
	CanManageComments      bool `json:"canManageComments"`
	CanModerateContent     bool `json:"canModerateContent"`
	CanManageCircles       bool `json:"canManageCircles"`
	CanManageStories       bool `json:"canManageStories"`
	CanViewAnalytics       bool `json:"canViewAnalytics"`
	CanExportData          bool `json:"canExportData"`
	CanManageSEO           bool `json:"canManageSEO"`
	CanManageTheme         bool `json:"canManageTheme"`
	CanManageSettings      bool `json:"canManageSettings"`
	CanManageSecurity      bool `json:"canManageSecurity"`
	CanManageSubscriptions bool `json:"canManageSubscriptions"`
	CanManageNotifications bool `json:"canManageNotifications"`
	CanViewAuditLog        bool `json:"canViewAuditLog"`
	CanManageMedia         bool `json:"canManageMedia"`
}

// Has reports whether the vector grants c. It panics on a capability outside
// the enumeration.
func (v PermissionVector) Has(c Capability) bool {
	switch c {
	case CanManageUsers:
		return v.CanManageUsers
	case CanManageRoles:
		return v.CanManageRoles
	case CanManagePosts:
		return v.CanManagePosts
	case CanManageComments:
		return v.CanManageComments
	case CanModerateContent:
		return v.CanModerateContent
	case CanManageCircles:
		return v.CanManageCircles
	case CanManageStories:
		return v.CanManageStories
	case CanViewAnalytics:
		return v.CanViewAnalytics
	case CanExportData:
		return v.CanExportData
	case CanManageSEO:
		return v.CanManageSEO
	case CanManageTheme:
		return v.CanManageTheme
	case CanManageSettings:
		return v.CanManageSettings
	case CanManageSecurity:
		return v.CanManageSecurity
	case CanManageSubscriptions:
		return v.CanManageSubscriptions
	case CanManageNotifications:
		return v.CanManageNotifications
	case CanViewAuditLog:
		return v.CanViewAuditLog
	case CanManageMedia:
		return v.CanManageMedia
	}
	panic("adminroles: unknown capability " + string(c))
}

// Granted returns the granted capabilities in canonical order.
func (v PermissionVector) Granted() []Capability {
	var granted []Capability
	for _, c := range Capabilities() {
		if v.Has(c) {
			granted = append(granted, c)
		}
	}
	return granted
}

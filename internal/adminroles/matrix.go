package adminroles

// Every row spells out every capability; no row is derived from another.
var rolePermissions = map[Role]PermissionVector{
	RoleSuperAdmin: {
		CanManageUsers:         true,
		CanManageRoles:         true,
		CanManagePosts:         true,
		CanManageComments:      true,
		CanModerateContent:     true,
		CanManageCircles:       true,
		CanManageStories:       true,
		CanViewAnalytics:       true,
		CanExportData:          true,
		CanManageSEO:           true,
		CanManageTheme:         true,
		CanManageSettings:      true,
		CanManageSecurity:      true,
		CanManageSubscriptions: true,
		CanManageNotifications: true,
		CanViewAuditLog:        true,
		CanManageMedia:         true,
	},
	RoleContentAdmin: {
		CanManageUsers:         false,
		CanManageRoles:         false,
		CanManagePosts:         true,
		CanManageComments:      true,
		CanModerateContent:     true,
		CanManageCircles:       true,
		CanManageStories:       true,
		CanViewAnalytics:       true,
		CanExportData:          true,
		CanManageSEO:           true,
		CanManageTheme:         true,
		CanManageSettings:      false,
		CanManageSecurity:      false,
		CanManageSubscriptions: false,
		CanManageNotifications: true,
		CanViewAuditLog:        false,
		CanManageMedia:         true,
	},
	RoleCircleAdmin: {
		CanManageUsers:         false,
		CanManageRoles:         false,
		CanManagePosts:         false,
		CanManageComments:      true,
		CanModerateContent:     true,
		CanManageCircles:       true,
		CanManageStories:       false,
		CanViewAnalytics:       true,
		CanExportData:          false,
		CanManageSEO:           false,
		CanManageTheme:         false,
		CanManageSettings:      false,
		CanManageSecurity:      false,
		CanManageSubscriptions: false,
		CanManageNotifications: true,
		CanViewAuditLog:        false,
		CanManageMedia:         false,
	},
	RoleUserAdmin: {
		CanManageUsers:         true,
		CanManageRoles:         true,
		CanManagePosts:         false,
		CanManageComments:      false,
		CanModerateContent:     true,
		CanManageCircles:       false,
		CanManageStories:       false,
		CanViewAnalytics:       true,
		CanExportData:          true,
		CanManageSEO:           false,
		CanManageTheme:         false,
		CanManageSettings:      false,
		CanManageSecurity:      false,
		CanManageSubscriptions: true,
		CanManageNotifications: true,
		CanViewAuditLog:        true,
		CanManageMedia:         false,
	},
	RoleAnalyticsAdmin: {
		CanManageUsers:         false,
		CanManageRoles:         false,
		CanManagePosts:         false,
		CanManageComments:      false,
		CanModerateContent:     false,
		CanManageCircles:       false,
		CanManageStories:       false,
		CanViewAnalytics:       true,
		CanExportData:          true,
		CanManageSEO:           false,
		CanManageTheme:         false,
		CanManageSettings:      false,
		CanManageSecurity:      false,
		CanManageSubscriptions: false,
		CanManageNotifications: false,
		CanViewAuditLog:        true,
		CanManageMedia:         false,
	},
	RoleModerator: {
		CanManageUsers:         false,
		CanManageRoles:         false,
		CanManagePosts:         true,
		CanManageComments:      true,
		CanModerateContent:     true,
		CanManageCircles:       true,
		CanManageStories:       true,
		CanViewAnalytics:       false,
		CanExportData:          false,
		CanManageSEO:           false,
		CanManageTheme:         false,
		CanManageSettings:      false,
		CanManageSecurity:      false,
		CanManageSubscriptions: false,
		CanManageNotifications: false,
		CanViewAuditLog:        false,
		CanManageMedia:         false,
	},
}

var roleLabels = map[Role]string{
	RoleSuperAdmin:     "Super Admin",
	RoleContentAdmin:   "Content Admin",
	RoleCircleAdmin:    "Circle Admin",
	RoleUserAdmin:      "User Admin",
	RoleAnalyticsAdmin: "Analytics Admin",
	RoleModerator:      "Moderator",
}

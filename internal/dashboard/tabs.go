// Package dashboard decides which admin dashboard tabs a role may see.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/kindred-stories/kindred/internal/adminroles"
)

// Tab names an admin dashboard panel.
type Tab string

// Dashboard tabs in display order.
const (
	TabUsers         Tab = "users"
	TabRoles         Tab = "roles"
	TabPosts         Tab = "posts"
	TabComments      Tab = "comments"
	TabModeration    Tab = "moderation"
	TabCircles       Tab = "circles"
	TabStories       Tab = "stories"
	TabAnalytics     Tab = "analytics"
	TabExports       Tab = "exports"
	TabSEO           Tab = "seo"
	TabTheme         Tab = "theme"
	TabSettings      Tab = "settings"
	TabSecurity      Tab = "security"
	TabSubscriptions Tab = "subscriptions"
	TabNotifications Tab = "notifications"
	TabAudit         Tab = "audit"
	TabMedia         Tab = "media"
)

type tabSpec struct {
	tab        Tab
	title      string
	capability adminroles.Capability
}

var tabTable = []tabSpec{
	{TabUsers, "User Management", adminroles.CanManageUsers},
	{TabRoles, "Roles & Permissions", adminroles.CanManageRoles},
	{TabPosts, "Posts", adminroles.CanManagePosts},
	{TabComments, "Comments", adminroles.CanManageComments},
	{TabModeration, "Moderation Queue", adminroles.CanModerateContent},
	{TabCircles, "Circles", adminroles.CanManageCircles},
	{TabStories, "Stories", adminroles.CanManageStories},
	{TabAnalytics, "Analytics", adminroles.CanViewAnalytics},
	{TabExports, "Data Export", adminroles.CanExportData},
	{TabSEO, "SEO Settings", adminroles.CanManageSEO},
	{TabTheme, "Theme", adminroles.CanManageTheme},
	{TabSettings, "Site Settings", adminroles.CanManageSettings},
	{TabSecurity, "Security", adminroles.CanManageSecurity},
	{TabSubscriptions, "Subscriptions", adminroles.CanManageSubscriptions},
	{TabNotifications, "Notifications", adminroles.CanManageNotifications},
	{TabAudit, "Audit Log", adminroles.CanViewAuditLog},
	{TabMedia, "Media Library", adminroles.CanManageMedia},
}

func init() {
	if err := ValidateTabs(); err != nil {
		panic(err)
	}
}

// Tabs returns every tab in display order.
func Tabs() []Tab {
	tabs := make([]Tab, len(tabTable))
	for i, spec := range tabTable {
		tabs[i] = spec.tab
	}
	return tabs
}

// RequiredCapability returns the capability gating tab.
func RequiredCapability(tab Tab) adminroles.Capability {
	return lookup(tab).capability
}

// Title returns the display title of tab.
func Title(tab Tab) string {
	return lookup(tab).title
}

// ParseTab converts s into a Tab.
func ParseTab(s string) (Tab, error) {
	for _, spec := range tabTable {
		if string(spec.tab) == s {
			return spec.tab, nil
		}
	}
	return "", fmt.Errorf("dashboard: unknown tab %q", s)
}

// VisibleTabs filters the tab list for a resolved admin role. When ok is
// false the caller has no admin role and nothing is visible.
func VisibleTabs(role adminroles.Role, ok bool) []Tab {
	if !ok {
		return nil
	}
	perms := adminroles.GetPermissions(role)
	visible := make([]Tab, 0, len(tabTable))
	for _, spec := range tabTable {
		if perms.Has(spec.capability) {
			visible = append(visible, spec.tab)
		}
	}
	return visible
}

// ValidateTabs checks that every tab references a known capability and that
// every capability is reachable through some tab.
func ValidateTabs() error {
	return validateTabTable(tabTable)
}

func validateTabTable(table []tabSpec) error {
	var errs []error
	covered := make(map[adminroles.Capability]struct{}, len(table))
	seen := make(map[Tab]struct{}, len(table))
	for _, spec := range table {
		if _, dup := seen[spec.tab]; dup {
			errs = append(errs, fmt.Errorf("dashboard: tab %s listed twice", spec.tab))
		}
		seen[spec.tab] = struct{}{}
		if spec.title == "" {
			errs = append(errs, fmt.Errorf("dashboard: tab %s has no title", spec.tab))
		}
		if _, err := adminroles.ParseCapability(string(spec.capability)); err != nil {
			errs = append(errs, fmt.Errorf("dashboard: tab %s: %w", spec.tab, err))
			continue
		}
		covered[spec.capability] = struct{}{}
	}
	for _, c := range adminroles.Capabilities() {
		if _, ok := covered[c]; !ok {
			errs = append(errs, fmt.Errorf("dashboard: capability %s has no tab", c))
		}
	}
	return errors.Join(errs...)
}

func lookup(tab Tab) tabSpec {
	for _, spec := range tabTable {
		if spec.tab == tab {
			return spec
		}
	}
	panic("dashboard: unknown tab " + string(tab))
}

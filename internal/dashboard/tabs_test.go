package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindred-stories/kindred/internal/access"
	"github.com/kindred-stories/kindred/internal/adminroles"
)

func TestValidateTabs(t *testing.T) {
	require.NoError(t, ValidateTabs())
	assert.Len(t, Tabs(), len(adminroles.Capabilities()))
}

func TestVisibleTabsWithoutAdminRole(t *testing.T) {
	assert.Nil(t, VisibleTabs("", false))
	_, ok := BuildView(access.Resolution{UserID: "u1", Source: access.SourceNone})
	assert.False(t, ok)
}

func TestVisibleTabsSuperAdminSeesAll(t *testing.T) {
	assert.Equal(t, Tabs(), VisibleTabs(adminroles.RoleSuperAdmin, true))
}

func TestVisibleTabsFollowCapabilities(t *testing.T) {
	for _, role := range adminroles.Roles() {
		visible := VisibleTabs(role, true)
		set := make(map[Tab]bool, len(visible))
		for _, tab := range visible {
			set[tab] = true
		}
		for _, tab := range Tabs() {
			want := adminroles.HasPermission(role, RequiredCapability(tab))
			assert.Equal(t, want, set[tab], "%s/%s", role, tab)
		}
	}
}

func TestModeratorTabs(t *testing.T) {
	visible := VisibleTabs(adminroles.RoleModerator, true)
	assert.Contains(t, visible, TabCircles)
	assert.NotContains(t, visible, TabSecurity)
	assert.NotContains(t, visible, TabUsers)
}

func TestBuildView(t *testing.T) {
	view, ok := BuildView(access.Resolution{UserID: "u1", Role: adminroles.RoleAnalyticsAdmin, OK: true})
	require.True(t, ok)
	assert.Equal(t, "Analytics Admin", view.Label)
	assert.Equal(t, adminroles.GetPermissions(adminroles.RoleAnalyticsAdmin), view.Permissions)
	var tabs []Tab
	for _, tv := range view.Tabs {
		tabs = append(tabs, tv.Tab)
		assert.NotEmpty(t, tv.Title)
	}
	assert.Equal(t, []Tab{TabAnalytics, TabExports, TabAudit}, tabs)
}

func TestValidateTabTableCatchesGaps(t *testing.T) {
	table := append([]tabSpec(nil), tabTable[:len(tabTable)-1]...)
	table = append(table, tabSpec{tab: "wiki", title: "Wiki", capability: "canManageWiki"})

	err := validateTabTable(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tab wiki")
	assert.Contains(t, err.Error(), "capability canManageMedia has no tab")
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("seo")
	require.NoError(t, err)
	assert.Equal(t, TabSEO, tab)
	_, err = ParseTab("billing")
	assert.Error(t, err)
}

func TestCheckTab(t *testing.T) {
	mod := access.Resolution{UserID: "u1", Role: adminroles.RoleModerator, OK: true}
	got := CheckTab(mod, TabCircles)
	assert.True(t, got.Visible)
	assert.Equal(t, adminroles.CanManageCircles, got.Capability)
	assert.False(t, CheckTab(mod, TabSecurity).Visible)

	for _, tab := range Tabs() {
		assert.False(t, CheckTab(access.Resolution{Source: access.SourceInvalid}, tab).Visible, tab)
	}
}

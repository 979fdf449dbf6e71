package dashboard

import (
	"github.com/kindred-stories/kindred/internal/access"
	"github.com/kindred-stories/kindred/internal/adminroles"
)

// TabView is a visible tab as rendered by the dashboard client.
type TabView struct {
	Tab        Tab                   `json:"tab"`
	Title      string                `json:"title"`
	Capability adminroles.Capability `json:"capability"`
}

// View is the dashboard payload for one admin.
type View struct {
	Role        adminroles.Role             `json:"role"`
	Label       string                      `json:"label"`
	Permissions adminroles.PermissionVector `json:"permissions"`
	Tabs        []TabView                   `json:"tabs"`
}

// BuildView assembles the dashboard payload. It returns false when the
// caller has no admin role, in which case no admin shell is rendered.
func BuildView(res access.Resolution) (View, bool) {
	if !res.OK {
		return View{}, false
	}
	visible := VisibleTabs(res.Role, res.OK)
	tabs := make([]TabView, 0, len(visible))
	for _, tab := range visible {
		tabs = append(tabs, TabView{Tab: tab, Title: Title(tab), Capability: RequiredCapability(tab)})
	}
	return View{
		Role:        res.Role,
		Label:       adminroles.Label(res.Role),
		Permissions: res.Permissions(),
		Tabs:        tabs,
	}, true
}

// TabAccess reports whether a caller may open one tab.
type TabAccess struct {
	TabView
	Visible bool `json:"visible"`
}

// CheckTab reports the access res has to tab.
func CheckTab(res access.Resolution, tab Tab) TabAccess {
	return TabAccess{
		TabView: TabView{Tab: tab, Title: Title(tab), Capability: RequiredCapability(tab)},
		Visible: res.Can(RequiredCapability(tab)),
	}
}

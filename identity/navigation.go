package identity

import (
	"strings"

	"farmconnect/models"
)

const (
	ViewLogin           = "/auth/login"
	ViewSignup          = "/auth/signup"
	ViewShop            = "/shop"
	ViewSellerDashboard = "/dashboard/seller"
	dashboardPrefix     = "/dashboard"
)

// Navigator is the view router the navigation policy drives.
type Navigator interface {
	CurrentView() string
	Navigate(view string)
}

// NavigationPolicy moves the user between views when their identity changes.
// Register it with Manager.Subscribe.
type NavigationPolicy struct {
	nav Navigator
}

func NewNavigationPolicy(nav Navigator) *NavigationPolicy {
	return &NavigationPolicy{nav: nav}
}

func (p *NavigationPolicy) OnIdentityEvent(e Event) {
	current := p.nav.CurrentView()

	switch e.Kind {
	case EventAuthenticated:
		if (current == ViewLogin || current == ViewSignup) && e.User != nil {
			p.nav.Navigate(LandingView(e.User.Role))
		}
	case EventAnonymous:
		if IsPrivilegedView(current) {
			p.nav.Navigate(ViewLogin)
		}
	case EventProfileIncomplete:
		role := models.RoleBuyer
		if e.User != nil && e.User.Role != "" {
			role = e.User.Role
		}
		if view := SettingsView(role); current != view {
			p.nav.Navigate(view)
		}
	}
}

func LandingView(role models.Role) string {
	if role == models.RoleSeller {
		return ViewSellerDashboard
	}
	return ViewShop
}

func SettingsView(role models.Role) string {
	return dashboardPrefix + "/" + string(role) + "/settings"
}

func IsPrivilegedView(view string) bool {
	return view == dashboardPrefix || strings.HasPrefix(view, dashboardPrefix+"/")
}

package auth

import "sync"

// View names the guard routes between. The dashboard registers its own
// view identifiers; the guard only distinguishes the login entry from
// everything else.
const ViewLogin = "login"

// Guard is the routing-layer gatekeeper: a predicate consulted before a
// view is rendered or a command dispatched. Unauthenticated access to a
// protected view lands on the login view with the original destination
// remembered for after login; authenticated access to the login view is
// forwarded to the given home view.
type Guard struct {
	mgr  *Manager
	home string

	mu       sync.Mutex
	intended string
}

// NewGuard creates a guard that sends authenticated users to home.
func NewGuard(mgr *Manager, home string) *Guard {
	return &Guard{mgr: mgr, home: home}
}

// Resolve maps a requested view to the view that should actually render.
func (g *Guard) Resolve(requested string) string {
	authed := g.mgr.Authenticated() && g.mgr.Store().IsValid()

	if requested == ViewLogin {
		if authed {
			return g.home
		}
		return ViewLogin
	}

	if !authed {
		g.mu.Lock()
		g.intended = requested
		g.mu.Unlock()
		return ViewLogin
	}
	return requested
}

// AfterLogin returns the view to show once login succeeds: the remembered
// destination if there is one, otherwise home. The memory is consumed.
func (g *Guard) AfterLogin() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intended != "" {
		v := g.intended
		g.intended = ""
		return v
	}
	return g.home
}

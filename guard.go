package techcv

import (
	"net/url"
	"sync"
)

// GuardDecision is the render verdict for a guarded path.
type GuardDecision int

const (
	// RenderInterstitial shows the placeholder; the protected subtree must
	// not render.
	RenderInterstitial GuardDecision = iota
	// RenderContent shows the requested view.
	RenderContent
)

const defaultLoginPath = "/login"

// GuardOption customizes guard construction.
type GuardOption func(*RouteGuard)

// WithLoginPath overrides the login destination for redirects.
func WithLoginPath(path string) GuardOption {
	return func(g *RouteGuard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithGuardLogger overrides the guard's logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// RouteGuard gates rendering of protected views on session status. While
// the session is loading it renders the interstitial without navigating;
// an unauthenticated session is redirected once to the login destination
// with the current path as redirectTo.
type RouteGuard struct {
	sessions  *SessionStore
	table     *RouteTable
	nav       Navigator
	loginPath string
	logger    Logger

	mu          sync.Mutex
	lastStatus  SessionStatus
	redirected  bool
	redirectFor string
}

// NewRouteGuard wires a guard to the session store, route table, and
// navigator.
func NewRouteGuard(sessions *SessionStore, table *RouteTable, nav Navigator, opts ...GuardOption) *RouteGuard {
	g := &RouteGuard{
		sessions:  sessions,
		table:     table,
		nav:       nav,
		loginPath: defaultLoginPath,
		logger:    defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Resolve matches path against the route table and evaluates the guard for
// protected routes. Unprotected routes always render.
func (g *RouteGuard) Resolve(path string) (Route, GuardDecision) {
	route, _ := g.table.Match(path)
	if !route.Protected {
		return route, RenderContent
	}
	return route, g.Evaluate(path)
}

// Evaluate returns the render decision for a protected path. Re-evaluating
// with an unchanged unauthenticated status does not issue duplicate
// navigations; the redirect fires only as a reaction to a status change or
// a new path.
func (g *RouteGuard) Evaluate(path string) GuardDecision {
	state := g.sessions.Current()

	g.mu.Lock()
	defer g.mu.Unlock()

	if state.Status != g.lastStatus {
		g.redirected = false
		g.redirectFor = ""
		g.lastStatus = state.Status
	}

	switch state.Status {
	case StatusAuthenticated:
		return RenderContent
	case StatusLoading:
		return RenderInterstitial
	default:
		if !g.redirected || g.redirectFor != path {
			g.logger.Info("redirecting unauthenticated viewer from %s to %s", path, g.loginPath)
			g.nav.Navigate(g.loginDestination(path))
			g.redirected = true
			g.redirectFor = path
		}
		return RenderInterstitial
	}
}

func (g *RouteGuard) loginDestination(current string) string {
	q := url.Values{}
	q.Set("redirectTo", current)
	return g.loginPath + "?" + q.Encode()
}

package techcv

import "strings"

// Route maps a path pattern to a named view and its guard requirement.
// Patterns use ":name" for single-segment parameters.
type Route struct {
	Pattern   string
	Name      string
	Protected bool
}

// RouteTable is an ordered list of routes. Match walks the table in
// declaration order, so more specific patterns must come first.
type RouteTable struct {
	routes   []Route
	notFound Route
}

// NewRouteTable builds a table from the given routes.
func NewRouteTable(routes ...Route) *RouteTable {
	return &RouteTable{
		routes:   routes,
		notFound: Route{Pattern: "", Name: "not-found"},
	}
}

// DefaultRouteTable is the application's route map: the dashboard and CV
// management views require an authenticated session, the login, OAuth
// callback, verification, and public CV views do not.
func DefaultRouteTable() *RouteTable {
	return NewRouteTable(
		Route{Pattern: "/", Name: "dashboard", Protected: true},
		Route{Pattern: "/cv/edit", Name: "cv-edit", Protected: true},
		Route{Pattern: "/cv/preview", Name: "cv-preview", Protected: true},
		Route{Pattern: "/settings/public-url", Name: "public-url-settings", Protected: true},
		Route{Pattern: "/login", Name: "login"},
		Route{Pattern: "/auth/callback", Name: "oauth-callback"},
		Route{Pattern: "/auth/verify", Name: "registration-verify"},
		Route{Pattern: "/cv/:publicId", Name: "public-cv"},
	)
}

// Match resolves path against the table. The second return is false when
// the path only matched the not-found fallback.
func (t *RouteTable) Match(path string) (Route, bool) {
	segments := splitPath(path)
	for _, r := range t.routes {
		if matchPattern(splitPath(r.Pattern), segments) {
			return r, true
		}
	}
	return t.notFound, false
}

// Params extracts the ":name" parameter values of route from path. Callers
// must pass a path that matched the route.
func (t *RouteTable) Params(route Route, path string) map[string]string {
	params := map[string]string{}
	patSegs := splitPath(route.Pattern)
	segs := splitPath(path)
	for i, p := range patSegs {
		if strings.HasPrefix(p, ":") && i < len(segs) {
			params[p[1:]] = segs[i]
		}
	}
	return params
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchPattern(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return true
}

package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Route paths.
const (
	PathRoot       = "/"
	PathLogin      = "/login"
	PathRegister   = "/register"
	PathUnions     = "/unions"
	PathPlayers    = "/players"
	PathCharacters = "/characters"
)

// RedirectParam is the query parameter carrying the post-login target.
const RedirectParam = "redirect"

const maxRedirects = 8

var (
	// ErrLoginRequired is matched by the error Resolve returns when the
	// guard sends an anonymous user to the login route.
	ErrLoginRequired = errors.New("login required")

	// ErrRouteNotFound is returned for paths outside the route table.
	ErrRouteNotFound = errors.New("route not found")
)

// Route is one entry of the route table.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	Redirect     string // static redirect target, if any
}

// DefaultRoutes is the route table of the CLI.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathRoot, Name: "home", Redirect: PathUnions},
		{Path: PathLogin, Name: "login"},
		{Path: PathRegister, Name: "register"},
		{Path: PathUnions, Name: "unions", RequiresAuth: true},
		{Path: PathPlayers, Name: "players", RequiresAuth: true},
		{Path: PathCharacters, Name: "characters", RequiresAuth: true},
	}
}

// AuthState is what the guard needs to know about the session.
type AuthState interface {
	IsAuthenticated() bool
}

// Location is a resolved navigation target. RawQuery holds the query
// exactly as requested; Query is its parsed form.
type Location struct {
	Path     string
	RawQuery string
	Query    url.Values
	Route    Route
}

// FullPath returns the path with its query string. The requested query is
// returned verbatim; a Location built from Query alone is encoded.
func (l Location) FullPath() string {
	switch {
	case l.RawQuery != "":
		return l.Path + "?" + l.RawQuery
	case len(l.Query) > 0:
		return l.Path + "?" + l.Query.Encode()
	default:
		return l.Path
	}
}

// Decision is the outcome of Guard.
type Decision struct {
	Allow    bool
	Redirect Location
}

// Guard decides whether navigation to `to` may proceed. A route that
// requires auth, requested while signed out, is redirected to the login
// route with the original full path in the redirect parameter.
func Guard(auth AuthState, to Location) Decision {
	if to.Route.RequiresAuth && (auth == nil || !auth.IsAuthenticated()) {
		return Decision{
			Redirect: Location{
				Path:  PathLogin,
				Query: url.Values{RedirectParam: {to.FullPath()}},
			},
		}
	}
	return Decision{Allow: true}
}

// LoginRequiredError is returned by Resolve when the guard redirected.
type LoginRequiredError struct {
	Target Location // the location that was requested
	Login  Location // where the router landed
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("%s requires login", e.Target.Path)
}

// Is matches ErrLoginRequired.
func (e *LoginRequiredError) Is(target error) bool {
	return target == ErrLoginRequired
}

// View renders a route.
type View func(ctx context.Context, loc Location) error

// Router resolves paths against the route table.
type Router struct {
	auth AuthState

	mu      sync.RWMutex
	routes  map[string]Route
	order   []string
	views   map[string]View
	current Location
}

// New creates a router over routes, or DefaultRoutes when none are given.
func New(auth AuthState, routes ...Route) *Router {
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}
	r := &Router{
		auth:   auth,
		routes: make(map[string]Route, len(routes)),
		views:  make(map[string]View),
	}
	for _, rt := range routes {
		p := cleanPath(rt.Path)
		rt.Path = p
		if _, dup := r.routes[p]; !dup {
			r.order = append(r.order, p)
		}
		r.routes[p] = rt
	}
	return r
}

// Handle registers the view for a route path.
func (r *Router) Handle(path string, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[cleanPath(path)] = v
}

// Routes returns the route table in registration order.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Route, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.routes[p])
	}
	return out
}

// Current returns the last resolved location.
func (r *Router) Current() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Resolve follows static redirects, applies the guard and records the
// resulting location as current. When the guard redirects, the login
// location is recorded and a *LoginRequiredError is returned.
func (r *Router) Resolve(ctx context.Context, raw string) (Location, error) {
	loc, err := r.lookup(raw)
	if err != nil {
		return Location{}, err
	}

	for i := 0; loc.Route.Redirect != ""; i++ {
		if i >= maxRedirects {
			return Location{}, fmt.Errorf("redirect loop at %s", loc.Path)
		}
		next, err := r.lookup(loc.Route.Redirect)
		if err != nil {
			return Location{}, err
		}
		if len(next.Query) == 0 {
			next.Query = loc.Query
			next.RawQuery = loc.RawQuery
		}
		loc = next
	}

	if d := Guard(r.auth, loc); !d.Allow {
		login := d.Redirect
		if rt, ok := r.route(login.Path); ok {
			login.Route = rt
		}
		r.setCurrent(login)
		return login, &LoginRequiredError{Target: loc, Login: login}
	}

	r.setCurrent(loc)
	return loc, nil
}

// Push resolves raw and runs the view of the resolved route, if any.
func (r *Router) Push(ctx context.Context, raw string) error {
	loc, err := r.Resolve(ctx, raw)
	if err != nil {
		return err
	}

	r.mu.RLock()
	view := r.views[loc.Path]
	r.mu.RUnlock()
	if view == nil {
		return nil
	}
	return view(ctx, loc)
}

// Navigate is Push; it lets the router serve as the session navigator.
func (r *Router) Navigate(ctx context.Context, path string) error {
	return r.Push(ctx, path)
}

// RedirectTarget returns the post-login target recorded on the current
// location, or "" when there is none.
func (r *Router) RedirectTarget() string {
	cur := r.Current()
	if cur.Path != PathLogin {
		return ""
	}
	return cur.Query.Get(RedirectParam)
}

func (r *Router) lookup(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("%w: %s", ErrRouteNotFound, raw)
	}
	p := cleanPath(u.Path)
	rt, ok := r.route(p)
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrRouteNotFound, p)
	}
	loc := Location{Path: p, Route: rt}
	if q := u.Query(); len(q) > 0 {
		loc.Query = q
		loc.RawQuery = u.RawQuery
	}
	return loc, nil
}

func (r *Router) route(p string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[p]
	return rt, ok
}

func (r *Router) setCurrent(loc Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = loc
}

func cleanPath(p string) string {
	if p == "" {
		return PathRoot
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = PathRoot
		}
	}
	return p
}

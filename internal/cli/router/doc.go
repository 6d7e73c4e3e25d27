// Package router maps CLI views to routes and guards the ones that need a
// signed-in user.
//
// Guard is a pure function of the auth state and the target location.
// Router applies static redirects and the guard, remembers the current
// location, and runs the view registered for the resolved route. When a
// protected route is requested while signed out, the router lands on
// /login?redirect=<original path> and returns ErrLoginRequired.
package router

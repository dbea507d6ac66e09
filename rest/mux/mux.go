// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package mux implements the route registry and matcher. Routes are
// stored per HTTP method under the literal prefix of their template
// and resolved with a longest-prefix-first search.
package mux

import (
	"context"
	"fmt"
	"strings"

	"github.com/wirebind/wirebind/wire"
)

// Method defines an HTTP method expected to be used in a RESTful API.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Route is the compiled, immutable metadata for one registered
// (method, template, handler) triple, as seen by the matcher.
type Route interface {
	// Template returns the original route template.
	Template() string

	// LiteralPrefix returns the portion of the template before its
	// first placeholder, with any trailing "/" stripped. It is the
	// registry's lookup key.
	LiteralPrefix() string

	// PathParamCount returns the number of template placeholders.
	PathParamCount() int

	// ValidatePathSegment reports whether the i-th placeholder's type
	// converter accepts the raw segment value.
	ValidatePathSegment(i int, raw string) error

	// Dispatch binds the parsed request plus the matched path segments
	// into handler arguments, invokes the handler and coerces its
	// return value into a response.
	Dispatch(ctx context.Context, req *wire.Request, segments []string) (*wire.Response, error)
}

// RouteNotFoundError occurs when no registered route resolves for a
// method and path.
type RouteNotFoundError struct {
	Method Method
	Path   string
}

// Error implements the [error] interface.
func (e RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Method, e.Path)
}

// Router stores routes per method, keyed by literal prefix. It is
// meant to be fully built before serving begins and treated as
// read-only afterwards, so no locking is performed.
type Router struct {
	routes map[Method]map[string][]Route
}

// NewRouter initializes an empty Router.
func NewRouter() *Router {
	return &Router{
		routes: make(map[Method]map[string][]Route),
	}
}

// Handle appends the route to the list registered under its literal
// prefix for the given method. No collision detection is performed:
// routes sharing a prefix must be distinguishable by path parameter
// count or converter success.
func (r *Router) Handle(method Method, route Route) {
	byPrefix, ok := r.routes[method]
	if !ok {
		byPrefix = make(map[string][]Route)
		r.routes[method] = byPrefix
	}
	prefix := route.LiteralPrefix()
	byPrefix[prefix] = append(byPrefix[prefix], route)
}

// Resolve finds the route for a method and path. The path must
// already have its query string removed; a trailing "/" is ignored.
//
// Literal prefixes are tried from longest to shortest. Within a
// prefix, routes are tried in registration order and a route matches
// when the number of remaining segments equals its path parameter
// count and every remaining segment passes that parameter's type
// converter. A converter rejection on a length-matching route fails
// the whole resolution with [RouteNotFoundError] instead of falling
// back to sibling routes; overlapping typed templates at one prefix
// are resolved by whichever registered converter is consulted first.
func (r *Router) Resolve(method Method, path string) (Route, []string, error) {
	byPrefix, ok := r.routes[method]
	if !ok {
		return nil, nil, RouteNotFoundError{Method: method, Path: path}
	}

	// "/" resolves to the empty literal prefix, same as "/{id}" style
	// templates register under.
	path = strings.TrimSuffix(path, "/")
	segments := strings.Split(path, "/")

	for i := len(segments) - 1; i >= 0; i-- {
		prefix := strings.Join(segments[:i+1], "/")
		routes, ok := byPrefix[prefix]
		if !ok {
			continue
		}

		remaining := segments[i+1:]
		for _, route := range routes {
			if len(remaining) != route.PathParamCount() {
				continue
			}
			for j, seg := range remaining {
				err := route.ValidatePathSegment(j, seg)
				if err != nil {
					return nil, nil, RouteNotFoundError{Method: method, Path: path}
				}
			}
			return route, remaining, nil
		}
	}
	return nil, nil, RouteNotFoundError{Method: method, Path: path}
}

// Package router maps registered view sets onto list and detail URLs.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/roster/internal/viewset"
)

// Route is one URL template served by a view set.
type Route struct {
	// Path is the OpenAPI-style template, e.g. "/users/{id}/".
	Path     string
	Basename string
	Detail   bool
	ViewSet  viewset.ViewSet
	// Methods maps HTTP methods to actions, in routing order.
	Methods []MethodAction
}

// MethodAction binds an HTTP method to a view set action.
type MethodAction struct {
	Method string
	Action viewset.Action
}

var (
	listMethods = []MethodAction{
		{http.MethodGet, viewset.ActionList},
		{http.MethodPost, viewset.ActionCreate},
	}
	detailMethods = []MethodAction{
		{http.MethodGet, viewset.ActionRetrieve},
		{http.MethodPut, viewset.ActionUpdate},
		{http.MethodPatch, viewset.ActionPartialUpdate},
		{http.MethodDelete, viewset.ActionDestroy},
	}
)

type registration struct {
	prefix   string
	viewSet  viewset.ViewSet
	basename string
}

// SimpleRouter generates list and detail routes for each registered view set.
type SimpleRouter struct {
	registry []registration
}

// NewSimpleRouter creates an empty router.
func NewSimpleRouter() *SimpleRouter {
	return &SimpleRouter{}
}

// Register adds a view set under prefix. The prefix is used verbatim, so
// "users" serves "/users/" and "y/" serves "/y//".
func (r *SimpleRouter) Register(prefix string, vs viewset.ViewSet, basename string) {
	if basename == "" {
		basename = strings.Trim(prefix, "/")
	}
	r.registry = append(r.registry, registration{prefix: prefix, viewSet: vs, basename: basename})
}

// Routes returns every route in registration order, list before detail.
// Methods whose action the view set does not support are left out, and
// routes without any method are skipped.
func (r *SimpleRouter) Routes() []Route {
	routes := make([]Route, 0, len(r.registry)*2)
	for _, reg := range r.registry {
		supported := make(map[viewset.Action]bool)
		for _, a := range reg.viewSet.Actions() {
			supported[a] = true
		}

		for _, detail := range []bool{false, true} {
			route := Route{
				Path:     "/" + reg.prefix + "/",
				Basename: reg.basename,
				Detail:   detail,
				ViewSet:  reg.viewSet,
			}
			candidates := listMethods
			if detail {
				route.Path += fmt.Sprintf("{%s}/", viewset.LookupParam)
				candidates = detailMethods
			}
			for _, ma := range candidates {
				if supported[ma.Action] {
					route.Methods = append(route.Methods, ma)
				}
			}
			if len(route.Methods) > 0 {
				routes = append(routes, route)
			}
		}
	}
	return routes
}

// Mount binds every route onto r.
func (r *SimpleRouter) Mount(mux chi.Router) {
	for _, route := range r.Routes() {
		for _, ma := range route.Methods {
			mux.Method(ma.Method, route.Path, route.ViewSet.Handler(ma.Action))
		}
	}
}

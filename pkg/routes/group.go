// Package routes declares HTTP routes as data so handlers can expose their
// endpoints without owning a mux.
package routes

import "net/http"

// Group organizes routes under a common prefix, optionally nesting children.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in the given groups to mux, joining nested
// prefixes.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		register(mux, "", g)
	}
}

func register(mux *http.ServeMux, parent string, g Group) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		register(mux, prefix, child)
	}
}

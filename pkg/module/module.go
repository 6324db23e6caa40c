// Package module mounts routers under single-level path prefixes, each with
// its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Jayden3422/voice-assistant/pkg/middleware"
)

// Module is an HTTP handler that strips its prefix and delegates to an
// inner router wrapped in the module's middleware.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module with the given single-level prefix (e.g. "/api").
// Panics on an invalid prefix; prefixes are compile-time wiring.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use adds middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Serve strips the module prefix from the request path and dispatches to
// the wrapped inner router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := cloneRequest(req, strippedPath(req.URL.Path, m.prefix))
	m.middleware.Apply(m.router).ServeHTTP(w, inner)
}

func cloneRequest(req *http.Request, path string) *http.Request {
	out := new(http.Request)
	*out = *req
	out.URL = new(url.URL)
	*out.URL = *req.URL
	out.URL.Path = path
	out.URL.RawPath = ""
	return out
}

func strippedPath(full, prefix string) string {
	path := full[len(prefix):]
	if path == "" {
		return "/"
	}
	return path
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be a single-level sub-path: %s", prefix)
	}
	return nil
}

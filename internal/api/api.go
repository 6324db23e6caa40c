// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/Jayden3422/voice-assistant/internal/config"
	"github.com/Jayden3422/voice-assistant/internal/infrastructure"
	"github.com/Jayden3422/voice-assistant/pkg/middleware"
	"github.com/Jayden3422/voice-assistant/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The Domain is returned alongside so the server can coordinate session
// teardown during shutdown.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}

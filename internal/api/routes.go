package api

import (
	"net/http"

	"github.com/Jayden3422/voice-assistant/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Sessions.Handler().Routes(),
		domain.Runs.Handler().Routes(),
	)
}

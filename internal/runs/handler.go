package runs

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Jayden3422/voice-assistant/pkg/handlers"
	"github.com/Jayden3422/voice-assistant/pkg/pagination"
	"github.com/Jayden3422/voice-assistant/pkg/routes"
)

// Handler provides HTTP endpoints for run audit queries.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "runs"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for run endpoints. The audit
// trail is read-only over HTTP; writes happen through session operations.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/runs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// List returns a paginated list of runs with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single run by its id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	run, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, run)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching runs.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

package sessions

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/backend"
	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
	"github.com/Jayden3422/voice-assistant/pkg/handlers"
	"github.com/Jayden3422/voice-assistant/pkg/routes"
)

// Handler provides HTTP endpoints for session workflow operations.
type Handler struct {
	sys          System
	logger       *slog.Logger
	maxChunkSize int64
}

// CreateRequest optionally overrides the session locale.
type CreateRequest struct {
	Locale string `json:"locale"`
}

// InputRequest replaces the primary text input.
type InputRequest struct {
	Text string `json:"text"`
}

// ToggleRequest flips one action's enabled flag.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// PayloadRequest edits one payload field from its textual form.
type PayloadRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// RescheduleRequest carries a correction draft or submission.
type RescheduleRequest struct {
	Mode        string `json:"mode"`
	Text        string `json:"text"`
	AudioBase64 string `json:"audio_base64"`
}

// NewHandler creates a Handler with the given system, logger, and chunk limit.
func NewHandler(sys System, logger *slog.Logger, maxChunkSize int64) *Handler {
	return &Handler{
		sys:          sys,
		logger:       logger.With("handler", "sessions"),
		maxChunkSize: maxChunkSize,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Snapshot},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "PUT", Pattern: "/{id}/input", Handler: h.SetInput},
			{Method: "POST", Pattern: "/{id}/capture/{site}/start", Handler: h.StartCapture},
			{Method: "POST", Pattern: "/{id}/capture/{site}/chunks", Handler: h.AppendChunk},
			{Method: "POST", Pattern: "/{id}/capture/{site}/stop", Handler: h.StopCapture},
			{Method: "POST", Pattern: "/{id}/analyze", Handler: h.Analyze},
			{Method: "POST", Pattern: "/{id}/actions/{index}/toggle", Handler: h.Toggle},
			{Method: "PATCH", Pattern: "/{id}/actions/{index}/payload", Handler: h.EditPayload},
			{Method: "POST", Pattern: "/{id}/confirm", Handler: h.Confirm},
			{Method: "PUT", Pattern: "/{id}/reschedule/{index}", Handler: h.SetRescheduleText},
			{Method: "POST", Pattern: "/{id}/reschedule/{index}", Handler: h.SubmitReschedule},
		},
	}
}

// Create starts a new session and returns its initial snapshot.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	o := h.sys.Create(req.Locale)
	handlers.RespondJSON(w, http.StatusCreated, o.Snapshot())
}

// Snapshot returns the session's full visible state.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// Delete tears the session down, abandoning any active capture.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetInput replaces the primary text input.
func (h *Handler) SetInput(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}

	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	o.SetInput(req.Text)
	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// StartCapture begins recording at the referenced capture site.
func (h *Handler) StartCapture(w http.ResponseWriter, r *http.Request) {
	o, site, ok := h.captureSite(w, r)
	if !ok {
		return
	}

	if err := o.StartCapture(r.Context(), site); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// AppendChunk appends one raw audio chunk to an active capture session.
func (h *Handler) AppendChunk(w http.ResponseWriter, r *http.Request) {
	o, site, ok := h.captureSite(w, r)
	if !ok {
		return
	}

	chunk, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxChunkSize))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
		return
	}

	if err := o.AppendAudio(site, chunk); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StopCapture finalizes the capture and runs the site's continuation: a
// primary capture analyzes the recording, an action capture submits it as a
// correction.
func (h *Handler) StopCapture(w http.ResponseWriter, r *http.Request) {
	o, site, ok := h.captureSite(w, r)
	if !ok {
		return
	}

	if err := o.StopCapture(r.Context(), site); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// Analyze issues a text analysis of the primary input.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := o.AnalyzeText(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// Toggle flips the enabled flag of one proposed action.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	o, index, ok := h.actionIndex(w, r)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := o.Toggle(index, req.Enabled); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// EditPayload replaces one payload field of one proposed action.
func (h *Handler) EditPayload(w http.ResponseWriter, r *http.Request) {
	o, index, ok := h.actionIndex(w, r)
	if !ok {
		return
	}

	var req PayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := o.EditPayloadField(index, req.Field, req.Value); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// Confirm submits the finalized action list for execution. A partial failure
// still returns the full outcome; the notice carries the warning.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}

	outcome, err := o.Confirm(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, outcome)
}

// SetRescheduleText updates the correction draft for one blocked action.
func (h *Handler) SetRescheduleText(w http.ResponseWriter, r *http.Request) {
	o, index, ok := h.actionIndex(w, r)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := o.SetRescheduleText(index, req.Text); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// SubmitReschedule resolves the correction for one blocked action and
// re-analyzes the merged primary input.
func (h *Handler) SubmitReschedule(w http.ResponseWriter, r *http.Request) {
	o, index, ok := h.actionIndex(w, r)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = backend.ModeText
	}

	payload := req.Text
	if mode == backend.ModeAudio {
		payload = req.AudioBase64
	}

	if err := o.SubmitReschedule(r.Context(), index, mode, payload); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return nil, false
	}

	o, err := h.sys.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return o, true
}

func (h *Handler) captureSite(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, orchestrator.SiteID, bool) {
	o, ok := h.session(w, r)
	if !ok {
		return nil, "", false
	}

	site, ok := orchestrator.ParseSiteID(r.PathValue("site"))
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, orchestrator.ErrValidation)
		return nil, "", false
	}
	return o, site, true
}

func (h *Handler) actionIndex(w http.ResponseWriter, r *http.Request) (*orchestrator.Orchestrator, int, bool) {
	o, ok := h.session(w, r)
	if !ok {
		return nil, 0, false
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, orchestrator.ErrValidation)
		return nil, 0, false
	}
	return o, index, true
}

// Package handlers provides the HTTP API for running and inspecting
// sessions.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/export"
	"github.com/alienxp03/panelist/internal/metrics"
	"github.com/alienxp03/panelist/internal/persona"
	"github.com/alienxp03/panelist/internal/provider"
	"github.com/alienxp03/panelist/internal/session"
	"github.com/alienxp03/panelist/internal/storage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	coordinator *session.Coordinator
	personas    *persona.Registry
	providers   *provider.Registry
	storage     storage.Storage
}

// New creates a new Handler.
func New(coordinator *session.Coordinator, personas *persona.Registry, providers *provider.Registry, store storage.Storage) *Handler {
	return &Handler{
		coordinator: coordinator,
		personas:    personas,
		providers:   providers,
		storage:     store,
	}
}

// Router builds the chi router with all API routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/personas", h.handleListPersonas)
		r.Get("/providers", h.handleListProviders)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.handleListSessions)
			r.Post("/", h.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetSession)
				r.Delete("/", h.handleDeleteSession)
				r.Post("/advance", h.handleAdvanceSession)
				r.Post("/end", h.handleEndSession)
				r.Post("/messages", h.handleUserMessage)
				r.Get("/metrics", h.handleSessionMetrics)
				r.Get("/export/{format}", h.handleExportSession)
			})
		})
	})

	return r
}

// CreateSessionRequest is the body for POST /api/sessions.
type CreateSessionRequest struct {
	Type           core.SessionType `json:"type"`
	Topic          string           `json:"topic"`
	Goals          []string         `json:"goals,omitempty"`
	ParticipantIDs []string         `json:"participant_ids"`
	Rounds         int              `json:"rounds"`
	AutoRun        bool             `json:"auto_run"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	spec := core.SessionSpec{
		Type:           req.Type,
		Topic:          req.Topic,
		Goals:          req.Goals,
		ParticipantIDs: req.ParticipantIDs,
		Rounds:         req.Rounds,
	}

	if req.AutoRun {
		spec.ID = core.GenerateID()
		if err := h.coordinator.Validate(spec); err != nil {
			h.sessionError(w, err)
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if _, err := h.coordinator.Run(ctx, spec); err != nil {
				slog.Error("Background session failed", "id", spec.ID, "error", err)
			}
		}()

		h.jsonStatus(w, http.StatusAccepted, map[string]string{"session_id": spec.ID})
		return
	}

	phase, err := h.coordinator.Start(r.Context(), spec)
	if err != nil {
		h.sessionError(w, err)
		return
	}

	h.jsonStatus(w, http.StatusCreated, phase)
}

func (h *Handler) handleAdvanceSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	phase, err := h.coordinator.Advance(r.Context(), id)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	h.json(w, phase)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.coordinator.End(r.Context(), id)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	h.json(w, result)
}

func (h *Handler) handleUserMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		h.jsonError(w, "content is required", http.StatusBadRequest)
		return
	}

	msg, err := h.coordinator.AddUserMessage(id, req.Content)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	h.json(w, msg)
}

func (h *Handler) handleSessionMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, err := h.coordinator.Metrics(id)
	if err == nil {
		h.json(w, m)
		return
	}

	// Fall back to stored messages for finished sessions.
	if h.storage != nil {
		msgs, dbErr := h.storage.GetMessages(id)
		if dbErr == nil && len(msgs) > 0 {
			transcript := make([]core.Message, len(msgs))
			for i, m := range msgs {
				transcript[i] = *m
			}
			h.json(w, metrics.Compute(transcript))
			return
		}
	}

	h.sessionError(w, err)
}

// SessionDetail is the response for GET /api/sessions/{id}.
type SessionDetail struct {
	Session  *core.Session  `json:"session,omitempty"`
	Messages []core.Message `json:"messages"`
	Active   bool           `json:"active"`
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Active sessions are served from memory.
	if transcript, err := h.coordinator.Transcript(id); err == nil {
		h.json(w, SessionDetail{Messages: transcript, Active: true})
		return
	}

	if h.storage == nil {
		h.jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	sess, err := h.storage.GetSession(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sess == nil {
		h.jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	msgs, err := h.storage.GetMessages(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	detail := SessionDetail{Session: sess, Messages: make([]core.Message, len(msgs))}
	for i, m := range msgs {
		detail.Messages[i] = *m
	}
	h.json(w, detail)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.json(w, []*core.SessionSummary{})
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	summaries, err := h.storage.ListSessions(limit, offset)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []*core.SessionSummary{}
	}
	h.json(w, summaries)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.storage == nil {
		h.jsonError(w, "storage not configured", http.StatusNotImplemented)
		return
	}

	if err := h.storage.DeleteSession(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := export.Format(chi.URLParam(r, "format"))

	exporter, err := export.GetExporter(format)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.loadResult(id)
	if err != nil {
		h.sessionError(w, err)
		return
	}

	filename := export.GenerateFilename(result, exporter.FileExtension())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown")
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	}

	if err := exporter.Export(result, w); err != nil {
		slog.Error("Export failed", "session", id, "format", format, "error", err)
	}
}

// loadResult reconstructs a SessionResult from storage for export.
func (h *Handler) loadResult(id string) (*core.SessionResult, error) {
	if h.storage == nil {
		return nil, &session.ErrSessionNotFound{ID: id}
	}

	sess, err := h.storage.GetSession(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &session.ErrSessionNotFound{ID: id}
	}

	msgs, err := h.storage.GetMessages(id)
	if err != nil {
		return nil, err
	}
	transcript := make([]core.Message, len(msgs))
	for i, m := range msgs {
		transcript[i] = *m
	}

	result := &core.SessionResult{
		SessionID: sess.ID,
		Spec: core.SessionSpec{
			ID:             sess.ID,
			Type:           sess.Type,
			Topic:          sess.Topic,
			Goals:          sess.Goals,
			ParticipantIDs: sess.ParticipantIDs,
			Rounds:         sess.Rounds,
		},
		Status:     sess.Status,
		Transcript: transcript,
		Summary:    sess.Summary,
		StartTime:  sess.CreatedAt,
		EndTime:    sess.UpdatedAt,
	}
	if sess.CompletedAt != nil {
		result.EndTime = *sess.CompletedAt
	}
	result.DurationSeconds = result.EndTime.Sub(result.StartTime).Seconds()

	if sess.Metrics != nil {
		result.Metrics = *sess.Metrics
	} else {
		result.Metrics = metrics.Compute(transcript)
	}

	return result, nil
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	h.json(w, h.personas.List())
}

// ProviderInfo describes one registered generation backend.
type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Available   bool   `json:"available"`
}

func (h *Handler) handleListProviders(w http.ResponseWriter, r *http.Request) {
	infos := []ProviderInfo{}
	for _, g := range h.providers.List() {
		infos = append(infos, ProviderInfo{
			Name:        g.Name(),
			DisplayName: g.DisplayName(),
			Available:   g.Available(),
		})
	}
	h.json(w, infos)
}

// sessionError maps engine errors to HTTP status codes.
func (h *Handler) sessionError(w http.ResponseWriter, err error) {
	var cfgErr *session.ConfigurationError
	if errors.As(err, &cfgErr) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var notFound *session.ErrSessionNotFound
	if errors.As(err, &notFound) {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Package httpapi exposes the plantcore service over HTTP: JSON command and
// read endpoints, the websocket dashboard stream, Prometheus metrics, and a
// health probe.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"plantcore/internal/core"
	"plantcore/internal/web"
	"plantcore/pkg/domain"
)

// Server wires the service and dashboard hub into an HTTP handler.
type Server struct {
	service        *core.Service
	hub            *web.Hub
	logger         core.Logger
	metricsHandler http.Handler
	defaultActor   domain.User
	router         *mux.Router
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHub attaches the websocket hub served at /ws. Successful commands
// trigger a snapshot broadcast.
func WithHub(h *web.Hub) ServerOption {
	return func(s *Server) { s.hub = h }
}

// WithMetricsHandler mounts the given handler at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.metricsHandler = h }
}

// WithDefaultActor sets the operator attributed to requests that carry no
// identity headers.
func WithDefaultActor(u domain.User) ServerOption {
	return func(s *Server) { s.defaultActor = u }
}

// WithServerLogger sets the request logger.
func WithServerLogger(l core.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer builds the HTTP surface over the service.
func NewServer(service *core.Service, opts ...ServerOption) *Server {
	s := &Server{
		service:      service,
		logger:       noopLogger{},
		defaultActor: domain.DefaultOperator,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler).Methods(http.MethodGet)
	}
	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/audit", s.handleAuditTrail).Methods(http.MethodGet)

	api.HandleFunc("/alarms", s.handleListAlarms).Methods(http.MethodGet)
	api.HandleFunc("/alarms", s.handleGenerateAlarm).Methods(http.MethodPost)
	api.HandleFunc("/alarms/acknowledge-all", s.handleAcknowledgeAllAlarms).Methods(http.MethodPost)
	api.HandleFunc("/alarms/{id}", s.handleGetAlarm).Methods(http.MethodGet)
	api.HandleFunc("/alarms/{id}/acknowledge", s.handleAcknowledgeAlarm).Methods(http.MethodPost)
	api.HandleFunc("/alarms/{id}/shelve", s.handleShelveAlarm).Methods(http.MethodPost)
	api.HandleFunc("/alarms/{id}/clear", s.handleClearAlarm).Methods(http.MethodPost)

	api.HandleFunc("/batches", s.handleListBatches).Methods(http.MethodGet)
	api.HandleFunc("/batches", s.handleCreateBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}", s.handleGetBatch).Methods(http.MethodGet)
	api.HandleFunc("/batches/{id}/start", s.handleStartBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/hold", s.handleHoldBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/resume", s.handleResumeBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/complete", s.handleCompleteBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/abort", s.handleAbortBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/advance-phase", s.handleAdvancePhase).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/materials/{lotID}/verify", s.handleVerifyMaterial).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/quality-checks", s.handleRecordQualityCheck).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}/deviations", s.handleRecordDeviation).Methods(http.MethodPost)

	api.HandleFunc("/changes", s.handleListChanges).Methods(http.MethodGet)
	api.HandleFunc("/changes", s.handleCreateChange).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}", s.handleGetChange).Methods(http.MethodGet)
	api.HandleFunc("/changes/{id}/submit", s.handleSubmitChange).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/approve", s.handleApproveChange).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/reject", s.handleRejectChange).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/implement", s.handleImplementChange).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/close", s.handleCloseChange).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/validation", s.handleUpdateValidation).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/comments", s.handleAddComment).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/attachments", s.handleAttachFile).Methods(http.MethodPost)
	api.HandleFunc("/changes/{id}/attachments", s.handleGetAttachment).Methods(http.MethodGet)

	api.HandleFunc("/equipment", s.handleListEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment", s.handleRegisterEquipment).Methods(http.MethodPost)
	api.HandleFunc("/equipment/{id}", s.handleGetEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{id}/status", s.handleUpdateEquipmentStatus).Methods(http.MethodPost)

	api.HandleFunc("/maintenance", s.handleListMaintenance).Methods(http.MethodGet)
	api.HandleFunc("/maintenance", s.handleScheduleMaintenance).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/{id}", s.handleGetMaintenance).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/{id}/start", s.handleStartMaintenance).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/{id}/complete", s.handleCompleteMaintenance).Methods(http.MethodPost)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.AuditTrail())
}

// actor resolves the operator identity from request headers, falling back to
// the configured default.
func (s *Server) actor(r *http.Request) domain.User {
	u := s.defaultActor
	if id := r.Header.Get("X-User-Id"); id != "" {
		u.ID = id
	}
	if name := r.Header.Get("X-User-Name"); name != "" {
		u.FullName = name
	}
	if username := r.Header.Get("X-Username"); username != "" {
		u.Username = username
	}
	if role := r.Header.Get("X-User-Role"); role != "" {
		u.Role = role
	}
	return u
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var notFound domain.ErrNotFound
	var transition domain.TransitionError
	var violation domain.RuleViolationError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &transition):
		status = http.StatusConflict
	case errors.As(err, &violation):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// broadcast pushes a fresh dashboard snapshot to connected clients after a
// successful command.
func (s *Server) broadcast(ctx context.Context) {
	if s.hub == nil {
		return
	}
	snap, err := s.service.Snapshot(ctx)
	if err != nil {
		s.logger.Error("snapshot for broadcast failed", "error", err)
		return
	}
	s.hub.BroadcastSnapshot(snap)
}

// respond writes the command outcome: the error when it failed, the entity
// plus any rule warnings when it committed.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, entity any, res core.Result, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(r.Context())
	s.writeJSON(w, http.StatusOK, commandResponse{Entity: entity, Warnings: res.Warnings()})
}

type commandResponse struct {
	Entity   any                `json:"entity,omitempty"`
	Warnings []domain.Violation `json:"warnings,omitempty"`
}

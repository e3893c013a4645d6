package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"plantcore/internal/core"
)

func (s *Server) handleListAlarms(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListAlarms())
}

func (s *Server) handleGetAlarm(w http.ResponseWriter, r *http.Request) {
	alarm, ok := s.service.GetAlarm(mux.Vars(r)["id"])
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "alarm not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, alarm)
}

func (s *Server) handleGenerateAlarm(w http.ResponseWriter, r *http.Request) {
	var alarm core.Alarm
	if !s.decode(w, r, &alarm) {
		return
	}
	created, res, err := s.service.GenerateAlarm(r.Context(), alarm, s.actor(r))
	s.respond(w, r, created, res, err)
}

func (s *Server) handleAcknowledgeAlarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Comment string `json:"comment"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.AcknowledgeAlarm(r.Context(), mux.Vars(r)["id"], req.Comment, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleAcknowledgeAllAlarms(w http.ResponseWriter, r *http.Request) {
	count, res, err := s.service.AcknowledgeAllAlarms(r.Context(), s.actor(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{"acknowledged": count, "warnings": res.Warnings()})
}

func (s *Server) handleShelveAlarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DurationMinutes int    `json:"duration_minutes"`
		Reason          string `json:"reason"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	d := time.Duration(req.DurationMinutes) * time.Minute
	updated, res, err := s.service.ShelveAlarm(r.Context(), mux.Vars(r)["id"], d, req.Reason, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleClearAlarm(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.ClearAlarm(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"plantcore/internal/core"
	"plantcore/pkg/domain"
)

func (s *Server) handleListEquipment(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListEquipment())
}

func (s *Server) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	eq, ok := s.service.GetEquipment(mux.Vars(r)["id"])
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "equipment not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, eq)
}

func (s *Server) handleRegisterEquipment(w http.ResponseWriter, r *http.Request) {
	var eq core.Equipment
	if !s.decode(w, r, &eq) {
		return
	}
	created, res, err := s.service.RegisterEquipment(r.Context(), eq, s.actor(r))
	s.respond(w, r, created, res, err)
}

func (s *Server) handleUpdateEquipmentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.SystemStatus `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.UpdateEquipmentStatus(r.Context(), mux.Vars(r)["id"], req.Status, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleListMaintenance(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListMaintenanceRecords())
}

func (s *Server) handleGetMaintenance(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.service.GetMaintenanceRecord(mux.Vars(r)["id"])
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "maintenance record not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	var rec core.MaintenanceRecord
	if !s.decode(w, r, &rec) {
		return
	}
	created, res, err := s.service.ScheduleMaintenanceWork(r.Context(), rec, s.actor(r))
	s.respond(w, r, created, res, err)
}

func (s *Server) handleStartMaintenance(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.StartMaintenance(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleCompleteMaintenance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Findings      string   `json:"findings"`
		PartsReplaced []string `json:"parts_replaced"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.CompleteMaintenance(r.Context(), mux.Vars(r)["id"], req.Findings, req.PartsReplaced, s.actor(r))
	s.respond(w, r, updated, res, err)
}

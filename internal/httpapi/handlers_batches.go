package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"plantcore/internal/core"
	"plantcore/pkg/domain"
)

func (s *Server) handleListBatches(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListBatches())
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.service.GetBatch(mux.Vars(r)["id"])
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "batch not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var batch core.Batch
	if !s.decode(w, r, &batch) {
		return
	}
	created, res, err := s.service.CreateBatch(r.Context(), batch, s.actor(r))
	s.respond(w, r, created, res, err)
}

func (s *Server) handleStartBatch(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.StartBatch(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleHoldBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.HoldBatch(r.Context(), mux.Vars(r)["id"], req.Reason, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleResumeBatch(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.ResumeBatch(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleCompleteBatch(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.CompleteBatch(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleAbortBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.AbortBatch(r.Context(), mux.Vars(r)["id"], req.Reason, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NextPhaseID   string `json:"next_phase_id"`
		NextPhaseName string `json:"next_phase_name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.AdvancePhase(r.Context(), mux.Vars(r)["id"], req.NextPhaseID, req.NextPhaseName, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleVerifyMaterial(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var lot domain.MaterialLot
	if !s.decode(w, r, &lot) {
		return
	}
	if lot.ID == "" {
		lot.ID = vars["lotID"]
	}
	updated, res, err := s.service.VerifyMaterial(r.Context(), vars["id"], lot, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleRecordQualityCheck(w http.ResponseWriter, r *http.Request) {
	var check domain.QualityCheck
	if !s.decode(w, r, &check) {
		return
	}
	updated, res, err := s.service.RecordQualityCheck(r.Context(), mux.Vars(r)["id"], check, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleRecordDeviation(w http.ResponseWriter, r *http.Request) {
	var deviation domain.BatchDeviation
	if !s.decode(w, r, &deviation) {
		return
	}
	updated, res, err := s.service.RecordDeviation(r.Context(), mux.Vars(r)["id"], deviation, s.actor(r))
	s.respond(w, r, updated, res, err)
}

package httpapi

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"plantcore/internal/core"
	"plantcore/pkg/domain"
)

// maxAttachmentBytes bounds uploaded attachment size.
const maxAttachmentBytes = 16 << 20

func (s *Server) handleListChanges(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListChangeRecords())
}

func (s *Server) handleGetChange(w http.ResponseWriter, r *http.Request) {
	record, ok := s.service.GetChangeRecord(mux.Vars(r)["id"])
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "change record not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCreateChange(w http.ResponseWriter, r *http.Request) {
	var change core.ChangeRecord
	if !s.decode(w, r, &change) {
		return
	}
	created, res, err := s.service.CreateChangeRecord(r.Context(), change, s.actor(r))
	s.respond(w, r, created, res, err)
}

func (s *Server) handleSubmitChange(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.SubmitForReview(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleApproveChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Comment string `json:"comment"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.ApproveChange(r.Context(), mux.Vars(r)["id"], req.Comment, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleRejectChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.RejectChange(r.Context(), mux.Vars(r)["id"], req.Reason, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleImplementChange(w http.ResponseWriter, r *http.Request) {
	updated, res, err := s.service.ImplementChange(r.Context(), mux.Vars(r)["id"], s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleCloseChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ValidationNotes string `json:"validation_notes"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.CloseChange(r.Context(), mux.Vars(r)["id"], req.ValidationNotes, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleUpdateValidation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.ValidationStatus `json:"status"`
		Notes  string                  `json:"notes"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.UpdateValidationStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.Notes, s.actor(r))
	s.respond(w, r, updated, res, err)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	updated, res, err := s.service.AddChangeComment(r.Context(), mux.Vars(r)["id"], req.Content, s.actor(r))
	s.respond(w, r, updated, res, err)
}

// handleAttachFile stores the raw request body as an attachment. The filename
// comes from the ?filename query parameter.
func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAttachmentBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read attachment body"})
		return
	}
	updated, res, err := s.service.AttachChangeFile(r.Context(), mux.Vars(r)["id"], filename, data, s.actor(r))
	s.respond(w, r, updated, res, err)
}

// handleGetAttachment streams a stored attachment identified by the ?key
// query parameter.
func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key query parameter required"})
		return
	}
	info, data, err := s.service.OpenChangeAttachment(r.Context(), mux.Vars(r)["id"], key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

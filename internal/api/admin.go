package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"heartbridge/internal/models"
)

type adminRequestResponse struct {
	Created bool                 `json:"created"`
	Request *models.AdminRequest `json:"request"`
}

// RequestAdmin files a pending request; 201 when new, 200 when one already exists
func (s *Server) RequestAdmin(w http.ResponseWriter, r *http.Request) {
	created, req, err := s.services.Admin.RequestAdmin(r.Context(), currentNickname(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, adminRequestResponse{Created: created, Request: req})
}

func (s *Server) MyAdminRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.services.Admin.RequestsFor(r.Context(), currentNickname(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRequests(w, requests)
}

func (s *Server) PendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.services.Admin.PendingRequests(r.Context(), currentNickname(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeRequests(w, requests)
}

func (s *Server) DecideRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var decision models.RequestStatus
	switch chi.URLParam(r, "decision") {
	case "approve":
		decision = models.StatusApproved
	case "reject":
		decision = models.StatusRejected
	default:
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	req, err := s.services.Admin.ProcessRequest(r.Context(), currentNickname(r), id, decision)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, req)
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Admin.Dashboard(r.Context(), currentNickname(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) Users(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.Admin.Users(r.Context(), currentNickname(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	WriteJSON(w, http.StatusOK, users)
}

func (s *Server) AllComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.services.Posts.ListAllComments(r.Context(), currentNickname(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	WriteJSON(w, http.StatusOK, comments)
}

func writeRequests(w http.ResponseWriter, requests []models.AdminRequest) {
	if requests == nil {
		requests = []models.AdminRequest{}
	}
	WriteJSON(w, http.StatusOK, requests)
}

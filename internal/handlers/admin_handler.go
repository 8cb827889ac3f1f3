package handlers

import (
	"html/template"
	"net/http"

	"heartbridge/internal/models"
	"heartbridge/internal/service"
)

// AdminHandler handles the admin console and the admin request workflow
type AdminHandler struct {
	admin      *service.AdminService
	posts      *service.PostService
	middleware *Middleware
	templates  *template.Template
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *service.AdminService, posts *service.PostService, middleware *Middleware, templates *template.Template) *AdminHandler {
	return &AdminHandler{
		admin:      admin,
		posts:      posts,
		middleware: middleware,
		templates:  templates,
	}
}

// ShowAdminDashboard shows statistics, pending requests, posts and comments
func (h *AdminHandler) ShowAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorName(r)

	stats, err := h.admin.Dashboard(ctx, actor)
	if err != nil {
		respondWithServiceError(w, "Error loading admin stats", err)
		return
	}
	pending, err := h.admin.PendingRequests(ctx, actor)
	if err != nil {
		respondWithServiceError(w, "Error loading admin requests", err)
		return
	}
	users, err := h.admin.Users(ctx, actor)
	if err != nil {
		respondWithServiceError(w, "Error loading users", err)
		return
	}
	posts, err := h.posts.Feed(ctx, actor, models.PostFilter{})
	if err != nil {
		respondWithServiceError(w, "Error loading posts", err)
		return
	}
	comments, err := h.posts.ListAllComments(ctx, actor)
	if err != nil {
		respondWithServiceError(w, "Error loading comments", err)
		return
	}

	data := AdminViewData{
		PageData: h.middleware.page(r, "Admin console"),
		Stats:    stats,
		Pending:  pending,
		Users:    users,
		Posts:    posts,
		Comments: comments,
	}
	render(w, h.templates, "admin.tmpl", http.StatusOK, data)
}

// DeletePost removes any post with its comments and likes
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.posts.DeletePost(r.Context(), actorName(r), id); err != nil {
		respondWithServiceError(w, "Error deleting post", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// DecideRequest approves or rejects a pending admin request
func (h *AdminHandler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	var decision models.RequestStatus
	switch r.PathValue("decision") {
	case "approve":
		decision = models.StatusApproved
	case "reject":
		decision = models.StatusRejected
	default:
		http.NotFound(w, r)
		return
	}

	if _, err := h.admin.ProcessRequest(r.Context(), actorName(r), id, decision); err != nil {
		respondWithServiceError(w, "Error processing admin request", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ShowAdminRequest shows the caller's request history and the request button
func (h *AdminHandler) ShowAdminRequest(w http.ResponseWriter, r *http.Request) {
	requests, err := h.admin.RequestsFor(r.Context(), actorName(r))
	if err != nil {
		respondWithServiceError(w, "Error loading admin requests", err)
		return
	}

	data := AdminRequestViewData{
		PageData: h.middleware.page(r, "Request admin rights"),
		Requests: requests,
	}
	for _, req := range requests {
		if req.IsPending() {
			data.HasPending = true
			break
		}
	}
	switch r.URL.Query().Get("status") {
	case "submitted":
		data.Success = "Your request was submitted."
	case "exists":
		data.Error = "You already have a pending request."
	}
	render(w, h.templates, "admin_request.tmpl", http.StatusOK, data)
}

// SubmitAdminRequest files a new admin request
func (h *AdminHandler) SubmitAdminRequest(w http.ResponseWriter, r *http.Request) {
	created, _, err := h.admin.RequestAdmin(r.Context(), actorName(r))
	if err != nil {
		respondWithServiceError(w, "Error submitting admin request", err)
		return
	}
	if !created {
		http.Redirect(w, r, "/admin-request?status=exists", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin-request?status=submitted", http.StatusSeeOther)
}

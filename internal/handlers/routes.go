package handlers

import (
	"html/template"
	"net/http"

	"heartbridge/internal/security"
	"heartbridge/internal/service"
	"heartbridge/internal/storage"
)

// Dependencies is everything the HTML routes need
type Dependencies struct {
	Services  *service.Services
	Templates *template.Template
	Avatars   *storage.AvatarStore
	CSRF      *security.CSRFGenerator
	Limiter   *security.RateLimiter
	MaxUpload int64
}

// NewRouter builds the server-rendered site
func NewRouter(d Dependencies) http.Handler {
	middleware := NewMiddleware(d.Services.Auth, d.CSRF, d.Limiter)
	authHandler := NewAuthHandler(d.Services.Auth, d.Avatars, middleware, d.Templates, d.MaxUpload)
	postHandler := NewPostHandler(d.Services.Posts, d.Services.Likes, middleware, d.Templates)
	adminHandler := NewAdminHandler(d.Services.Admin, d.Services.Posts, middleware, d.Templates)

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(middleware.CSRFProtect(h))
	}

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /{$}", postHandler.Home)
	mux.HandleFunc("GET /children", postHandler.Children)
	mux.HandleFunc("GET /parents", postHandler.Parents)
	mux.HandleFunc("GET /post/{id}", postHandler.ShowPost)
	mux.HandleFunc("GET /avatars/{file}", authHandler.ServeAvatar)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("GET /logout", authHandler.ShowLogout)
	mux.HandleFunc("POST /logout", protect(authHandler.Logout))

	// Posting
	mux.HandleFunc("GET /post/new", middleware.RequireAuth(postHandler.ShowNewPost))
	mux.HandleFunc("POST /post/new", protect(postHandler.CreatePost))
	mux.HandleFunc("POST /post/{id}/comment", protect(postHandler.CreateComment))
	mux.HandleFunc("POST /post/{id}/like", protect(postHandler.ToggleLike))
	mux.HandleFunc("POST /post/{id}/delete", protect(postHandler.DeletePost))
	mux.HandleFunc("POST /delete_comment/{id}", protect(postHandler.DeleteComment))

	// Admin workflow
	mux.HandleFunc("GET /admin-request", middleware.RequireAuth(adminHandler.ShowAdminRequest))
	mux.HandleFunc("POST /admin-request", protect(adminHandler.SubmitAdminRequest))
	mux.HandleFunc("GET /admin", middleware.RequireAdmin(adminHandler.ShowAdminDashboard))
	mux.HandleFunc("POST /admin/delete_post/{id}", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeletePost)))
	mux.HandleFunc("POST /admin/requests/{id}/{decision}", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DecideRequest)))

	return middleware.LoadUser(mux)
}

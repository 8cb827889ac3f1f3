package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"heartbridge/internal/security"
	"heartbridge/internal/service"
)

// Server serves the JSON API under /api
type Server struct {
	services    *service.Services
	tokens      TokenService
	limiter     *security.RateLimiter
	corsOrigins []string
}

// NewServer creates the API server. limiter may be nil.
func NewServer(services *service.Services, tokens TokenService, limiter *security.RateLimiter, corsOrigins []string) *Server {
	return &Server{
		services:    services,
		tokens:      tokens,
		limiter:     limiter,
		corsOrigins: corsOrigins,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.With(s.RateLimit).Post("/auth/register", s.Register)
		api.With(s.RateLimit).Post("/auth/token", s.Token)

		api.Get("/posts", s.ListPosts)
		api.Get("/posts/{id}", s.GetPost)
		api.Get("/posts/{id}/comments", s.ListComments)

		api.Group(func(authed chi.Router) {
			authed.Use(s.WithAuth)
			authed.Get("/me", s.Me)
			authed.Post("/posts", s.CreatePost)
			authed.Delete("/posts/{id}", s.DeletePost)
			authed.Post("/posts/{id}/comments", s.CreateComment)
			authed.Post("/posts/{id}/like", s.ToggleLike)
			authed.Delete("/comments/{id}", s.DeleteComment)
			authed.Get("/admin-requests", s.MyAdminRequests)
			authed.Post("/admin-requests", s.RequestAdmin)

			authed.Route("/admin", func(admin chi.Router) {
				admin.Get("/requests", s.PendingRequests)
				admin.Post("/requests/{id}/{decision}", s.DecideRequest)
				admin.Get("/stats", s.Stats)
				admin.Get("/users", s.Users)
				admin.Get("/comments", s.AllComments)
			})
		})

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "Not found")
		})
		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})
	return r
}

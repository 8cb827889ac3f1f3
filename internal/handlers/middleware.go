package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"heartbridge/internal/logger"
	"heartbridge/internal/models"
	"heartbridge/internal/security"
	"heartbridge/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	SessionContextKey ContextKey = "session_id"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
	}
}

// LoadUser attaches the logged-in user, if any, to the request context.
// Stale cookies are cleared.
func (m *Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := security.SessionIDFromRequest(r)
		if sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.ValidateSession(r.Context(), sessionID)
		if err != nil {
			if !isSessionMiss(err) {
				logger.Warn().Err(err).Msg("Session lookup failed")
			}
			http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, SessionContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is middleware that requires a valid session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireAdmin is middleware that requires an admin session. The services
// check again against the stored flag.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if !user.IsAdmin {
			http.Error(w, ErrForbiddenMsg, http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// CSRFProtect rejects state-changing requests without a token bound to the session
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(csrfHeaderName)
		if token == "" {
			token = r.FormValue(csrfFieldName)
		}
		if !m.csrf.ValidateToken(sessionFromContext(r.Context()), token) {
			logger.Warn().Str("path", r.URL.Path).Msg("CSRF validation failed")
			http.Error(w, ErrInvalidCSRF, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// RateLimit throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := m.limiter.ClientIP(r)
		if !m.limiter.Allow(ip) {
			logger.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("Rate limit exceeded")
			http.Error(w, ErrTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token to embed in forms for this request
func (m *Middleware) CSRFToken(r *http.Request) string {
	sessionID := sessionFromContext(r.Context())
	if sessionID == "" {
		return ""
	}
	token, err := m.csrf.GenerateToken(sessionID)
	if err != nil {
		return ""
	}
	return token
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func sessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(SessionContextKey).(string)
	return id
}

// actorName is the nickname passed to the services, "" when anonymous
func actorName(r *http.Request) string {
	if user := GetUserFromContext(r.Context()); user != nil {
		return user.Nickname
	}
	return ""
}

func isSessionMiss(err error) bool {
	return errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired)
}

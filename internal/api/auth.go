package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/models"
)

type contextKey string

const ctxUser contextKey = "user"

// WithAuth requires a valid bearer token naming an existing account
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		nickname, err := s.tokens.ParseAccessToken(token)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}
		user, err := s.services.Auth.GetUser(r.Context(), nickname)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// CurrentUser returns the account attached by WithAuth
func CurrentUser(r *http.Request) *models.User {
	if user, ok := r.Context().Value(ctxUser).(*models.User); ok {
		return user
	}
	return nil
}

func currentNickname(r *http.Request) string {
	if user := CurrentUser(r); user != nil {
		return user.Nickname
	}
	return ""
}

// RateLimit throttles credential endpoints per client IP
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(s.limiter.ClientIP(r)) {
			WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

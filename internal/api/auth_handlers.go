package api

import (
	"net/http"

	"heartbridge/internal/models"
	"heartbridge/internal/service"
	"heartbridge/internal/validation"
)

type registerRequest struct {
	Nickname        string `json:"nickname"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

type tokenRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.services.Auth.Register(r.Context(), service.RegisterInput{
		Nickname:            req.Nickname,
		Password:            req.Password,
		ConfirmPassword:     req.ConfirmPassword,
		RequireConfirmation: req.ConfirmPassword != "",
		Role:                models.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// Token exchanges a nickname and password for a bearer token
func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ok, err := s.services.Auth.Authenticate(r.Context(), req.Nickname, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Invalid nickname or password")
		return
	}
	token, exp, err := s.tokens.CreateAccessToken(validation.NormalizeNickname(req.Nickname))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, CurrentUser(r))
}

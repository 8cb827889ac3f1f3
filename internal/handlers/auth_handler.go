package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/logger"
	"heartbridge/internal/models"
	"heartbridge/internal/security"
	"heartbridge/internal/service"
	"heartbridge/internal/storage"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	avatars     *storage.AvatarStore
	middleware  *Middleware
	templates   *template.Template
	maxUpload   int64
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, avatars *storage.AvatarStore, middleware *Middleware, templates *template.Template, maxUpload int64) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		avatars:     avatars,
		middleware:  middleware,
		templates:   templates,
		maxUpload:   maxUpload,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, h.templates, "login.tmpl", http.StatusOK, LoginViewData{PageData: h.middleware.page(r, "Log in")})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	nickname := r.FormValue("nickname")
	session, _, err := h.authService.Login(r.Context(), nickname, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			respondWithServiceError(w, "Login failed", err)
			return
		}
		data := LoginViewData{PageData: h.middleware.page(r, "Log in"), Nickname: nickname}
		data.Error = "Invalid nickname or password"
		render(w, h.templates, "login.tmpl", http.StatusUnauthorized, data)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := RegisterViewData{PageData: h.middleware.page(r, "Register"), Role: string(models.RoleChild)}
	render(w, h.templates, "register.tmpl", http.StatusOK, data)
}

// Register handles the multipart registration form, including the optional avatar
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload + multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderRegisterError(w, r, http.StatusBadRequest, "The form could not be read. Is the avatar too large?")
		return
	}

	nickname := r.FormValue("nickname")
	role := r.FormValue("role")

	avatar, err := h.saveAvatar(r)
	if err != nil {
		status, msg := StatusFor(err)
		if status >= http.StatusInternalServerError {
			respondWithError(w, status, msg, "Error saving avatar", err)
			return
		}
		h.renderRegisterError(w, r, status, msg)
		return
	}

	_, err = h.authService.Register(r.Context(), service.RegisterInput{
		Nickname:            nickname,
		Password:            r.FormValue("password"),
		ConfirmPassword:     r.FormValue("confirm_password"),
		RequireConfirmation: true,
		Role:                models.Role(role),
		Avatar:              avatar,
	})
	if err != nil {
		if avatar != "" {
			if derr := h.avatars.Delete(avatar); derr != nil {
				logger.Warn().Err(derr).Str("avatar", avatar).Msg("Failed to remove orphaned avatar")
			}
		}
		msg, userErr := userMessage(err)
		if !userErr {
			respondWithServiceError(w, "Registration failed", err)
			return
		}
		status, _ := StatusFor(err)
		h.renderRegisterError(w, r, status, msg)
		return
	}

	session, _, err := h.authService.Login(r.Context(), nickname, r.FormValue("password"))
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) saveAvatar(r *http.Request) (string, error) {
	file, header, err := r.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.avatars.Save(file, header.Filename)
}

func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := RegisterViewData{
		PageData: h.middleware.page(r, "Register"),
		Nickname: r.FormValue("nickname"),
		Role:     r.FormValue("role"),
	}
	data.Error = msg
	render(w, h.templates, "register.tmpl", status, data)
}

// ShowLogout renders a confirmation form so logging out stays a POST
func (h *AuthHandler) ShowLogout(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, h.templates, "logout.tmpl", http.StatusOK, h.middleware.page(r, "Log out"))
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := sessionFromContext(r.Context()); sessionID != "" {
		if err := h.authService.Logout(r.Context(), sessionID); err != nil {
			logger.Warn().Err(err).Msg("Failed to delete session")
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ServeAvatar serves a stored avatar file
func (h *AuthHandler) ServeAvatar(w http.ResponseWriter, r *http.Request) {
	path, ok := h.avatars.Path(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/logger"
	"heartbridge/internal/models"
	"heartbridge/internal/security"
	"heartbridge/internal/validation"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// RegisterInput carries the registration form
type RegisterInput struct {
	Nickname        string
	Password        string
	ConfirmPassword string
	// RequireConfirmation is set when the caller's form has a confirmation field
	RequireConfirmation bool
	Role                models.Role
	Avatar              string
}

// AuthService handles accounts and sessions
type AuthService struct {
	users           CredentialStore
	sessions        SessionStore
	sessionDuration time.Duration
	now             func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users CredentialStore, sessions SessionStore, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		sessions:        sessions,
		sessionDuration: sessionDuration,
		now:             utcNow,
	}
}

// Register validates the input and creates a new account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	nickname := validation.NormalizeNickname(in.Nickname)
	if err := validation.ValidateNickname(nickname); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidatePasswordConfirmation(in.Password, in.ConfirmPassword, in.RequireConfirmation); err != nil {
		return nil, err
	}
	if err := validation.ValidateRole(string(in.Role)); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUser(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateNickname
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Nickname:     nickname,
		PasswordHash: passwordHash,
		Role:         in.Role,
		Avatar:       in.Avatar,
		CreatedAt:    s.now(),
	}
	// The store enforces uniqueness too, so a concurrent registration still fails cleanly
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().Str("nickname", nickname).Str("role", string(in.Role)).Msg("User registered")
	return user, nil
}

// Authenticate reports whether the nickname and password match.
// Errors are returned only for storage failures.
func (s *AuthService) Authenticate(ctx context.Context, nickname, password string) (bool, error) {
	user, err := s.users.GetUser(ctx, validation.NormalizeNickname(nickname))
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	return security.CheckPassword(password, user.PasswordHash), nil
}

// GetUser returns the account or ErrNotFound
func (s *AuthService) GetUser(ctx context.Context, nickname string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

// GetRole returns the user's role, or "" for an unknown nickname
func (s *AuthService) GetRole(ctx context.Context, nickname string) (models.Role, error) {
	user, err := s.users.GetUser(ctx, nickname)
	if err != nil || user == nil {
		return "", err
	}
	return user.Role, nil
}

// GetAvatar returns the stored avatar file name, or "" when there is none
func (s *AuthService) GetAvatar(ctx context.Context, nickname string) (string, error) {
	user, err := s.users.GetUser(ctx, nickname)
	if err != nil || user == nil {
		return "", err
	}
	return user.Avatar, nil
}

// IsAdmin reports whether the user holds admin rights; false for unknown users
func (s *AuthService) IsAdmin(ctx context.Context, nickname string) (bool, error) {
	user, err := s.users.GetUser(ctx, nickname)
	if err != nil || user == nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// GrantAdmin makes the user an admin. Granting twice is harmless.
func (s *AuthService) GrantAdmin(ctx context.Context, nickname string) error {
	return s.users.SetAdmin(ctx, nickname, true)
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, nickname, password string) (*models.Session, *models.User, error) {
	nickname = validation.NormalizeNickname(nickname)
	user, err := s.users.GetUser(ctx, nickname)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	session := &models.Session{
		ID:        security.GenerateSessionID(),
		Nickname:  user.Nickname,
		ExpiresAt: now.Add(s.sessionDuration),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpiredAt(s.now()) {
		_ = s.sessions.DeleteSession(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetUser(ctx, session.Nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and returns how many were deleted
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}

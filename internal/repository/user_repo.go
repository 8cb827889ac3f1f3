package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/database"
	"heartbridge/internal/models"
)

const userColumns = "nickname, password_hash, role, avatar, is_admin, created_at"

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user into the database
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (nickname, password_hash, role, avatar, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.Nickname, user.PasswordHash, user.Role, user.Avatar, user.IsAdmin, user.CreatedAt)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateNickname
		}
		return apperrors.Storage("failed to create user", err)
	}
	return nil
}

// GetUser retrieves a user by exact nickname
func (r *UserRepository) GetUser(ctx context.Context, nickname string) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, "SELECT "+userColumns+" FROM users WHERE nickname = ?", nickname)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get user", err)
	}
	return user, nil
}

// SetAdmin sets the admin flag on a user
func (r *UserRepository) SetAdmin(ctx context.Context, nickname string, isAdmin bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE nickname = ?", isAdmin, nickname)
	if err != nil {
		return apperrors.Storage("failed to update admin flag", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read update result", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

// ListUsers retrieves all users, oldest first
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY created_at, nickname")
	if err != nil {
		return nil, apperrors.Storage("failed to query users", err)
	}
	return users, nil
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, nickname, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.Nickname, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return apperrors.Storage("failed to create session", err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	err := r.db.GetContext(ctx, session,
		"SELECT id, nickname, expires_at, created_at FROM sessions WHERE id = ?", sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get session", err)
	}
	return session, nil
}

// DeleteSession removes a session from the database
func (r *UserRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return apperrors.Storage("failed to delete session", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions that expired before now
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", now)
	if err != nil {
		return 0, apperrors.Storage("failed to delete expired sessions", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage("failed to read delete result", err)
	}
	return n, nil
}

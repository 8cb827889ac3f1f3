package service

import (
	"context"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/models"
)

// CanModerate reports whether actor may delete content owned by owner:
// authors manage their own content and admins manage everything.
func CanModerate(actor *models.User, owner string) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin || actor.Nickname == owner
}

// RequireAdmin returns ErrForbidden unless actor is an admin
func RequireAdmin(actor *models.User) error {
	if actor == nil || !actor.IsAdmin {
		return apperrors.Forbidden("admin privileges required")
	}
	return nil
}

// resolveActor loads the acting user so authorization always sees the current admin flag
func resolveActor(ctx context.Context, users CredentialStore, nickname string) (*models.User, error) {
	if nickname == "" {
		return nil, apperrors.Forbidden("login required")
	}
	user, err := users.GetUser(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Forbidden("unknown user")
	}
	return user, nil
}

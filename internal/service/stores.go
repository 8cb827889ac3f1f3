package service

import (
	"context"
	"time"

	"heartbridge/internal/models"
)

// CredentialStore persists user accounts. Get methods return (nil, nil) when the row is absent.
type CredentialStore interface {
	// CreateUser fails with apperrors.ErrDuplicateNickname when the nickname exists
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, nickname string) (*models.User, error)
	// SetAdmin fails with apperrors.ErrNotFound for an unknown nickname
	SetAdmin(ctx context.Context, nickname string, isAdmin bool) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// SessionStore persists browser sessions
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ContentStore persists posts and their comments
type ContentStore interface {
	// CreatePost assigns post.ID
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	// ListPosts returns newest first
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	// DeletePost removes the post with its comments and likes atomically
	DeletePost(ctx context.Context, id int64) error

	// CreateComment assigns comment.ID and fails with apperrors.ErrNotFound if the post is gone
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	// ListComments returns a post's comments in insertion order
	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	ListAllComments(ctx context.Context) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	CountComments(ctx context.Context, postID int64) (int, error)
}

// EngagementStore persists likes
type EngagementStore interface {
	// ToggleLike flips the (post, nickname) like in one atomic step and
	// returns the new state with the post's like count
	ToggleLike(ctx context.Context, postID int64, nickname string, now time.Time) (bool, int, error)
	CountLikes(ctx context.Context, postID int64) (int, error)
	HasLiked(ctx context.Context, postID int64, nickname string) (bool, error)
}

// AdminRequestStore persists admin-elevation requests
type AdminRequestStore interface {
	// CreatePendingRequest inserts a pending request unless one exists,
	// in which case it returns the existing one and false
	CreatePendingRequest(ctx context.Context, nickname string, now time.Time) (*models.AdminRequest, bool, error)
	GetRequest(ctx context.Context, id int64) (*models.AdminRequest, error)
	// ListRequests filters by status; the empty status lists all
	ListRequests(ctx context.Context, status models.RequestStatus) ([]models.AdminRequest, error)
	ListRequestsFor(ctx context.Context, nickname string) ([]models.AdminRequest, error)
	// DecideRequest moves a pending request to decision and, on approval, grants
	// admin to its owner in the same transaction. Fails with apperrors.ErrNotFound
	// or apperrors.ErrRequestAlreadyDecided.
	DecideRequest(ctx context.Context, id int64, decision models.RequestStatus, reviewer string, now time.Time) (*models.AdminRequest, error)
}

// StatsStore reports table totals for the admin console
type StatsStore interface {
	CountAll(ctx context.Context) (*models.Stats, error)
}

// WordFilter returns the blocked words present in words
type WordFilter interface {
	ValidateWords(ctx context.Context, words []string) ([]string, error)
}

// Store is everything the domain services need from persistence
type Store interface {
	CredentialStore
	SessionStore
	ContentStore
	EngagementStore
	AdminRequestStore
	StatsStore
	WordFilter
}

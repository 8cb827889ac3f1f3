package service

import (
	"context"
	"strconv"
	"time"
)

// LikeService toggles and counts likes
type LikeService struct {
	users CredentialStore
	likes EngagementStore
	locks *keyedMutex
	now   func() time.Time
}

// NewLikeService creates a new like service
func NewLikeService(users CredentialStore, likes EngagementStore) *LikeService {
	return &LikeService{
		users: users,
		likes: likes,
		locks: newKeyedMutex(),
		now:   utcNow,
	}
}

// ToggleLike flips actor's like on a post and returns the new state and count.
// Toggles on the same post are serialized.
func (s *LikeService) ToggleLike(ctx context.Context, actor string, postID int64) (bool, int, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return false, 0, err
	}

	unlock := s.locks.Lock(strconv.FormatInt(postID, 10))
	defer unlock()

	return s.likes.ToggleLike(ctx, postID, user.Nickname, s.now())
}

// LikeCount returns the number of likes on a post
func (s *LikeService) LikeCount(ctx context.Context, postID int64) (int, error) {
	return s.likes.CountLikes(ctx, postID)
}

// HasLiked reports whether nickname likes the post
func (s *LikeService) HasLiked(ctx context.Context, postID int64, nickname string) (bool, error) {
	if nickname == "" {
		return false, nil
	}
	return s.likes.HasLiked(ctx, postID, nickname)
}

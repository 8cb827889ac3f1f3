package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/database"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db *database.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *database.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// ToggleLike removes the like if present, otherwise adds it, all in one transaction.
// The post row lock serializes concurrent toggles on the same post.
func (r *LikeRepository) ToggleLike(ctx context.Context, postID int64, nickname string, now time.Time) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}

		var likeID int64
		err := tx.GetContext(ctx, &likeID, "SELECT id FROM likes WHERE post_id = ? AND nickname = ?", postID, nickname)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, "DELETE FROM likes WHERE id = ?", likeID); err != nil {
				return apperrors.Storage("failed to remove like", err)
			}
			liked = false
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO likes (post_id, nickname, created_at) VALUES (?, ?, ?)",
				postID, nickname, now); err != nil {
				return apperrors.Storage("failed to add like", err)
			}
			liked = true
		default:
			return apperrors.Storage("failed to look up like", err)
		}

		if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM likes WHERE post_id = ?", postID); err != nil {
			return apperrors.Storage("failed to count likes", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// CountLikes returns the number of likes on a post
func (r *LikeRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM likes WHERE post_id = ?", postID); err != nil {
		return 0, apperrors.Storage("failed to count likes", err)
	}
	return count, nil
}

// HasLiked reports whether nickname currently likes the post
func (r *LikeRepository) HasLiked(ctx context.Context, postID int64, nickname string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM likes WHERE post_id = ? AND nickname = ?", postID, nickname)
	if err != nil {
		return false, apperrors.Storage("failed to check like", err)
	}
	return count > 0, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/database"
	"heartbridge/internal/models"
)

// Author role and avatar come from a LEFT JOIN so posts by missing users still list
const (
	postSelect = `
		SELECT p.id, p.author, p.content, p.created_at,
			COALESCE(u.role, '') AS author_role, COALESCE(u.avatar, '') AS author_avatar
		FROM posts p
		LEFT JOIN users u ON u.nickname = p.author`

	commentSelect = `
		SELECT c.id, c.post_id, c.author, c.content, c.created_at,
			COALESCE(u.role, '') AS author_role, COALESCE(u.avatar, '') AS author_avatar
		FROM comments c
		LEFT JOIN users u ON u.nickname = c.author`
)

// PostRepository handles database operations for posts and comments
type PostRepository struct {
	db *database.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts a post and sets its ID
func (r *PostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	id, err := r.db.ExecReturningID(ctx,
		"INSERT INTO posts (author, content, created_at) VALUES (?, ?, ?)",
		post.Author, post.Content, post.CreatedAt)
	if err != nil {
		return apperrors.Storage("failed to create post", err)
	}
	post.ID = id
	return nil
}

// GetPost retrieves a post by ID
func (r *PostRepository) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post := &models.Post{}
	err := r.db.GetContext(ctx, post, postSelect+" WHERE p.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get post", err)
	}
	return post, nil
}

// ListPosts returns posts newest first, optionally narrowed by author role or author
func (r *PostRepository) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query := postSelect + " WHERE 1 = 1"
	var args []any
	if filter.Role != "" {
		query += " AND u.role = ?"
		args = append(args, filter.Role)
	}
	if filter.Author != "" {
		query += " AND p.author = ?"
		args = append(args, filter.Author)
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	posts := []models.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, apperrors.Storage("failed to list posts", err)
	}
	return posts, nil
}

// DeletePost removes a post together with its comments and likes
func (r *PostRepository) DeletePost(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := lockPost(ctx, tx, id); err != nil {
			return err
		}
		for _, query := range []string{
			"DELETE FROM likes WHERE post_id = ?",
			"DELETE FROM comments WHERE post_id = ?",
			"DELETE FROM posts WHERE id = ?",
		} {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return apperrors.Storage("failed to delete post", err)
			}
		}
		return nil
	})
}

// CreateComment inserts a comment after confirming its post exists
func (r *PostRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := lockPost(ctx, tx, comment.PostID); err != nil {
			return err
		}
		id, err := tx.ExecReturningID(ctx,
			"INSERT INTO comments (post_id, author, content, created_at) VALUES (?, ?, ?, ?)",
			comment.PostID, comment.Author, comment.Content, comment.CreatedAt)
		if err != nil {
			return apperrors.Storage("failed to create comment", err)
		}
		comment.ID = id
		return nil
	})
}

// GetComment retrieves a comment by ID
func (r *PostRepository) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	comment := &models.Comment{}
	err := r.db.GetContext(ctx, comment, commentSelect+" WHERE c.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get comment", err)
	}
	return comment, nil
}

// ListComments returns a post's comments in insertion order
func (r *PostRepository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, commentSelect+" WHERE c.post_id = ? ORDER BY c.id", postID); err != nil {
		return nil, apperrors.Storage("failed to list comments", err)
	}
	return comments, nil
}

// ListAllComments returns every comment, newest first
func (r *PostRepository) ListAllComments(ctx context.Context) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, commentSelect+" ORDER BY c.created_at DESC, c.id DESC"); err != nil {
		return nil, apperrors.Storage("failed to list comments", err)
	}
	return comments, nil
}

// DeleteComment removes one comment
func (r *PostRepository) DeleteComment(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return apperrors.Storage("failed to delete comment", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read delete result", err)
	}
	if rows == 0 {
		return apperrors.NotFound("comment")
	}
	return nil
}

// CountComments returns how many comments a post has
func (r *PostRepository) CountComments(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM comments WHERE post_id = ?", postID); err != nil {
		return 0, apperrors.Storage("failed to count comments", err)
	}
	return count, nil
}

// lockPost confirms a post exists, taking a row lock where the dialect has one
func lockPost(ctx context.Context, tx database.DBTX, id int64) error {
	var found int64
	err := tx.GetContext(ctx, &found, "SELECT id FROM posts WHERE id = ?"+tx.GetDialect().LockClause(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("post")
	}
	if err != nil {
		return apperrors.Storage("failed to look up post", err)
	}
	return nil
}

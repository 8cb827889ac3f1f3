package service

import (
	"context"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/logger"
	"heartbridge/internal/models"
	"heartbridge/internal/validation"
)

// PostService handles posts, comments and the feed
type PostService struct {
	users   CredentialStore
	content ContentStore
	likes   EngagementStore
	filter  WordFilter
	now     func() time.Time
}

// NewPostService creates a new post service. filter may be nil to disable moderation.
func NewPostService(users CredentialStore, content ContentStore, likes EngagementStore, filter WordFilter) *PostService {
	return &PostService{
		users:   users,
		content: content,
		likes:   likes,
		filter:  filter,
		now:     utcNow,
	}
}

// CreatePost publishes content as actor
func (s *PostService) CreatePost(ctx context.Context, actor, content string) (*models.Post, error) {
	content, err := validation.ValidatePostContent(content)
	if err != nil {
		return nil, err
	}
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	post := &models.Post{Author: user.Nickname, Content: content, CreatedAt: s.now()}
	if err := s.content.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	post.AuthorRole, post.AuthorAvatar = user.Role, user.Avatar

	logger.Info().Int64("post_id", post.ID).Str("author", post.Author).Msg("Post created")
	return post, nil
}

// GetPost returns one post or ErrNotFound
func (s *PostService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.content.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperrors.NotFound("post")
	}
	return post, nil
}

// ListPosts returns posts newest first
func (s *PostService) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, validation.ValidationError{Field: "role", Message: "role must be parent or child"}
	}
	return s.content.ListPosts(ctx, filter)
}

// Feed decorates ListPosts with counts and the viewer's permissions. viewer may be empty.
func (s *PostService) Feed(ctx context.Context, viewer string, filter models.PostFilter) ([]models.FeedItem, error) {
	posts, err := s.ListPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	viewerUser, err := s.viewer(ctx, viewer)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(posts))
	for _, post := range posts {
		item, err := s.decorate(ctx, viewerUser, post)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// FeedItem returns one decorated post or ErrNotFound
func (s *PostService) FeedItem(ctx context.Context, viewer string, id int64) (*models.FeedItem, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	viewerUser, err := s.viewer(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, viewerUser, *post)
}

// DeletePost removes a post with its comments and likes. Only the author or an admin may do it.
func (s *PostService) DeletePost(ctx context.Context, actor string, id int64) error {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return err
	}
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !CanModerate(user, post.Author) {
		return apperrors.Forbidden("only the author or an admin can delete this post")
	}
	if err := s.content.DeletePost(ctx, id); err != nil {
		return err
	}

	logger.Info().Int64("post_id", id).Str("by", user.Nickname).Msg("Post deleted")
	return nil
}

// CreateComment adds a comment to an existing post
func (s *PostService) CreateComment(ctx context.Context, actor string, postID int64, content string) (*models.Comment, error) {
	content, err := validation.ValidateCommentContent(content)
	if err != nil {
		return nil, err
	}
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := s.moderate(ctx, content); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, Author: user.Nickname, Content: content, CreatedAt: s.now()}
	if err := s.content.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorRole, comment.AuthorAvatar = user.Role, user.Avatar
	return comment, nil
}

// ListComments returns a post's comments in insertion order
func (s *PostService) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	return s.content.ListComments(ctx, postID)
}

// ListAllComments returns every comment for the admin console
func (s *PostService) ListAllComments(ctx context.Context, actor string) ([]models.Comment, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(user); err != nil {
		return nil, err
	}
	return s.content.ListAllComments(ctx)
}

// DeleteComment removes a comment. Only its author or an admin may do it.
func (s *PostService) DeleteComment(ctx context.Context, actor string, id int64) error {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return err
	}
	comment, err := s.content.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return apperrors.NotFound("comment")
	}
	if !CanModerate(user, comment.Author) {
		return apperrors.Forbidden("only the author or an admin can delete this comment")
	}
	return s.content.DeleteComment(ctx, id)
}

func (s *PostService) moderate(ctx context.Context, text string) error {
	if s.filter == nil {
		return nil
	}
	found, err := s.filter.ValidateWords(ctx, validation.Words(text))
	if err != nil {
		return err
	}
	if len(found) > 0 {
		return &apperrors.ContentRejected{Words: found}
	}
	return nil
}

func (s *PostService) viewer(ctx context.Context, nickname string) (*models.User, error) {
	if nickname == "" {
		return nil, nil
	}
	return s.users.GetUser(ctx, nickname)
}

func (s *PostService) decorate(ctx context.Context, viewer *models.User, post models.Post) (*models.FeedItem, error) {
	item := &models.FeedItem{Post: post}

	var err error
	if item.LikeCount, err = s.likes.CountLikes(ctx, post.ID); err != nil {
		return nil, err
	}
	if item.CommentCount, err = s.content.CountComments(ctx, post.ID); err != nil {
		return nil, err
	}
	if viewer != nil {
		if item.Liked, err = s.likes.HasLiked(ctx, post.ID, viewer.Nickname); err != nil {
			return nil, err
		}
		item.CanDelete = CanModerate(viewer, post.Author)
	}
	return item, nil
}

// Package memory is an in-process implementation of the service store
// interfaces. A single RWMutex guards every table.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/models"
)

type likeKey struct {
	postID   int64
	nickname string
}

// Store keeps all domain tables in maps
type Store struct {
	mu sync.RWMutex

	users    map[string]models.User
	sessions map[string]models.Session
	posts    map[int64]models.Post
	comments map[int64]models.Comment
	likes    map[likeKey]models.Like
	requests map[int64]models.AdminRequest
	badWords map[string]bool

	nextPostID    int64
	nextCommentID int64
	nextLikeID    int64
	nextRequestID int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
		posts:    make(map[int64]models.Post),
		comments: make(map[int64]models.Comment),
		likes:    make(map[likeKey]models.Like),
		requests: make(map[int64]models.AdminRequest),
		badWords: make(map[string]bool),
	}
}

// AddBadWords extends the moderation list
func (s *Store) AddBadWords(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		if w = strings.TrimSpace(strings.ToLower(w)); w != "" {
			s.badWords[w] = true
		}
	}
}

// ValidateWords returns the blocked words among words, sorted
func (s *Store) ValidateWords(_ context.Context, words []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var found []string
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if s.badWords[w] && !seen[w] {
			seen[w] = true
			found = append(found, w)
		}
	}
	sort.Strings(found)
	return found, nil
}

// Users

// CreateUser stores a new account or fails with ErrDuplicateNickname
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Nickname]; exists {
		return apperrors.ErrDuplicateNickname
	}
	s.users[user.Nickname] = *user
	return nil
}

// GetUser returns a copy of the account, nil when absent
func (s *Store) GetUser(_ context.Context, nickname string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[nickname]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// SetAdmin changes the admin flag of an existing account
func (s *Store) SetAdmin(_ context.Context, nickname string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[nickname]
	if !ok {
		return apperrors.NotFound("user")
	}
	u.IsAdmin = isAdmin
	s.users[nickname] = u
	return nil
}

// ListUsers returns all accounts, oldest first
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Nickname < users[j].Nickname
	})
	return users, nil
}

// Sessions

// CreateSession stores a browser session
func (s *Store) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// GetSession returns the session, nil when absent
func (s *Store) GetSession(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

// DeleteSession removes a session; unknown ids are ignored
func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now
func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Posts and comments

// CreatePost assigns the next post id and stores the post
func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	post.ID = s.nextPostID
	stored := *post
	stored.AuthorRole, stored.AuthorAvatar = "", ""
	s.posts[post.ID] = stored
	return nil
}

// GetPost returns the decorated post, nil when absent
func (s *Store) GetPost(_ context.Context, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	s.decoratePost(&p)
	return &p, nil
}

// ListPosts returns matching posts, newest first
func (s *Store) ListPosts(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := []models.Post{}
	for _, p := range s.posts {
		s.decoratePost(&p)
		if filter.Role != "" && p.AuthorRole != filter.Role {
			continue
		}
		if filter.Author != "" && p.Author != filter.Author {
			continue
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

// DeletePost removes the post together with its comments and likes
func (s *Store) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return apperrors.NotFound("post")
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for key := range s.likes {
		if key.postID == id {
			delete(s.likes, key)
		}
	}
	delete(s.posts, id)
	return nil
}

// CreateComment assigns the next comment id; the post must exist
func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return apperrors.NotFound("post")
	}
	s.nextCommentID++
	comment.ID = s.nextCommentID
	stored := *comment
	stored.AuthorRole, stored.AuthorAvatar = "", ""
	s.comments[comment.ID] = stored
	return nil
}

// GetComment returns the decorated comment, nil when absent
func (s *Store) GetComment(_ context.Context, id int64) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	s.decorateComment(&c)
	return &c, nil
}

// ListComments returns a post's comments in insertion order
func (s *Store) ListComments(_ context.Context, postID int64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			s.decorateComment(&c)
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// ListAllComments returns every comment, newest first
func (s *Store) ListAllComments(_ context.Context) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := make([]models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		s.decorateComment(&c)
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

// DeleteComment removes one comment
func (s *Store) DeleteComment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return apperrors.NotFound("comment")
	}
	delete(s.comments, id)
	return nil
}

// CountComments counts a post's comments
func (s *Store) CountComments(_ context.Context, postID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

// Likes

// ToggleLike adds or removes the like for the pair and returns the new state and count
func (s *Store) ToggleLike(_ context.Context, postID int64, nickname string, now time.Time) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return false, 0, apperrors.NotFound("post")
	}
	key := likeKey{postID: postID, nickname: nickname}
	liked := false
	if _, exists := s.likes[key]; exists {
		delete(s.likes, key)
	} else {
		s.nextLikeID++
		s.likes[key] = models.Like{ID: s.nextLikeID, PostID: postID, Nickname: nickname, CreatedAt: now}
		liked = true
	}
	return liked, s.countLikesLocked(postID), nil
}

// CountLikes counts a post's likes
func (s *Store) CountLikes(_ context.Context, postID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLikesLocked(postID), nil
}

// HasLiked reports whether nickname liked the post
func (s *Store) HasLiked(_ context.Context, postID int64, nickname string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likes[likeKey{postID: postID, nickname: nickname}]
	return ok, nil
}

// Admin requests

// CreatePendingRequest returns the open request for nickname, or creates one
func (s *Store) CreatePendingRequest(_ context.Context, nickname string, now time.Time) (*models.AdminRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.Nickname == nickname && r.IsPending() {
			return &r, false, nil
		}
	}
	s.nextRequestID++
	req := models.AdminRequest{ID: s.nextRequestID, Nickname: nickname, Status: models.StatusPending, CreatedAt: now}
	s.requests[req.ID] = req
	return &req, true, nil
}

// GetRequest returns the request, nil when absent
func (s *Store) GetRequest(_ context.Context, id int64) (*models.AdminRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ListRequests returns requests with the given status, oldest first
func (s *Store) ListRequests(_ context.Context, status models.RequestStatus) ([]models.AdminRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterRequests(func(r models.AdminRequest) bool {
		return status == "" || r.Status == status
	}, false), nil
}

// ListRequestsFor returns one user's requests, newest first
func (s *Store) ListRequestsFor(_ context.Context, nickname string) ([]models.AdminRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterRequests(func(r models.AdminRequest) bool {
		return r.Nickname == nickname
	}, true), nil
}

// DecideRequest records a decision and grants admin on approval
func (s *Store) DecideRequest(_ context.Context, id int64, decision models.RequestStatus, reviewer string, now time.Time) (*models.AdminRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, apperrors.NotFound("admin request")
	}
	if !r.IsPending() {
		return nil, apperrors.ErrRequestAlreadyDecided
	}
	r.Status = decision
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	s.requests[id] = r

	if decision == models.StatusApproved {
		if u, ok := s.users[r.Nickname]; ok {
			u.IsAdmin = true
			s.users[r.Nickname] = u
		}
	}
	return &r, nil
}

// Stats

// CountAll returns the table totals for the admin console
func (s *Store) CountAll(_ context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := 0
	for _, r := range s.requests {
		if r.IsPending() {
			pending++
		}
	}
	return &models.Stats{
		Users:           len(s.users),
		Posts:           len(s.posts),
		Comments:        len(s.comments),
		Likes:           len(s.likes),
		PendingRequests: pending,
	}, nil
}

// helpers; callers hold s.mu

func (s *Store) decoratePost(p *models.Post) {
	if u, ok := s.users[p.Author]; ok {
		p.AuthorRole, p.AuthorAvatar = u.Role, u.Avatar
	}
}

func (s *Store) decorateComment(c *models.Comment) {
	if u, ok := s.users[c.Author]; ok {
		c.AuthorRole, c.AuthorAvatar = u.Role, u.Avatar
	}
}

func (s *Store) countLikesLocked(postID int64) int {
	n := 0
	for key := range s.likes {
		if key.postID == postID {
			n++
		}
	}
	return n
}

func (s *Store) filterRequests(keep func(models.AdminRequest) bool, newestFirst bool) []models.AdminRequest {
	out := []models.AdminRequest{}
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

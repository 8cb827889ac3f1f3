package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"heartbridge/internal/models"
)

type contentRequest struct {
	Content string `json:"content"`
}

type likeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

// ListPosts returns the feed, optionally filtered by ?role=parent|child
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter := models.PostFilter{
		Role:   models.Role(r.URL.Query().Get("role")),
		Author: r.URL.Query().Get("author"),
	}
	items, err := s.services.Posts.Feed(r.Context(), s.optionalViewer(r), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []models.FeedItem{}
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := s.services.Posts.FeedItem(r.Context(), s.optionalViewer(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := s.services.Posts.CreatePost(r.Context(), currentNickname(r), req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, post)
}

func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.services.Posts.DeletePost(r.Context(), currentNickname(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if _, err := s.services.Posts.GetPost(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	comments, err := s.services.Posts.ListComments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	WriteJSON(w, http.StatusOK, comments)
}

func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := s.services.Posts.CreateComment(r.Context(), currentNickname(r), id, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, comment)
}

func (s *Server) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.services.Posts.DeleteComment(r.Context(), currentNickname(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	liked, count, err := s.services.Likes.ToggleLike(r.Context(), currentNickname(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, likeResponse{Liked: liked, LikeCount: count})
}

// optionalViewer decorates public reads when a valid token is present
func (s *Server) optionalViewer(r *http.Request) string {
	token, ok := bearerToken(r)
	if !ok {
		return ""
	}
	nickname, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return ""
	}
	return nickname
}

package handlers

import (
	"html/template"
	"net/http"
	"strconv"

	"heartbridge/internal/models"
	"heartbridge/internal/service"
)

// PostHandler serves the feeds, posts, comments and likes
type PostHandler struct {
	posts      *service.PostService
	likes      *service.LikeService
	middleware *Middleware
	templates  *template.Template
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *service.PostService, likes *service.LikeService, middleware *Middleware, templates *template.Template) *PostHandler {
	return &PostHandler{
		posts:      posts,
		likes:      likes,
		middleware: middleware,
		templates:  templates,
	}
}

// Home shows every post, or one role's posts with ?view=children|parents
func (h *PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("view") {
	case "children":
		h.Children(w, r)
	case "parents":
		h.Parents(w, r)
	default:
		h.renderFeed(w, r, "Home", "All posts", "/", models.PostFilter{})
	}
}

// Children shows posts written by children
func (h *PostHandler) Children(w http.ResponseWriter, r *http.Request) {
	h.renderFeed(w, r, "Children's voices", "Children's voices", "/children", models.PostFilter{Role: models.RoleChild})
}

// Parents shows posts written by parents
func (h *PostHandler) Parents(w http.ResponseWriter, r *http.Request) {
	h.renderFeed(w, r, "Parents' concerns", "Parents' concerns", "/parents", models.PostFilter{Role: models.RoleParent})
}

func (h *PostHandler) renderFeed(w http.ResponseWriter, r *http.Request, title, heading, path string, filter models.PostFilter) {
	items, err := h.posts.Feed(r.Context(), actorName(r), filter)
	if err != nil {
		respondWithServiceError(w, "Error loading feed", err)
		return
	}

	data := FeedViewData{
		PageData: h.middleware.page(r, title),
		Heading:  heading,
		Path:     path,
		Items:    items,
	}
	render(w, h.templates, "feed.tmpl", http.StatusOK, data)
}

// ShowNewPost renders the compose form
func (h *PostHandler) ShowNewPost(w http.ResponseWriter, r *http.Request) {
	render(w, h.templates, "new_post.tmpl", http.StatusOK, NewPostViewData{PageData: h.middleware.page(r, "New post")})
}

// CreatePost publishes a post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	content := r.FormValue("content")
	post, err := h.posts.CreatePost(r.Context(), actorName(r), content)
	if err != nil {
		msg, userErr := userMessage(err)
		if !userErr {
			respondWithServiceError(w, "Error creating post", err)
			return
		}
		status, _ := StatusFor(err)
		data := NewPostViewData{PageData: h.middleware.page(r, "New post"), Content: content}
		data.Error = msg
		render(w, h.templates, "new_post.tmpl", status, data)
		return
	}

	http.Redirect(w, r, "/post/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}

// ShowPost renders a post with its comments
func (h *PostHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.renderPost(w, r, id, http.StatusOK, "", "")
}

func (h *PostHandler) renderPost(w http.ResponseWriter, r *http.Request, id int64, status int, errMsg, draft string) {
	ctx := r.Context()
	item, err := h.posts.FeedItem(ctx, actorName(r), id)
	if err != nil {
		respondWithServiceError(w, "Error loading post", err)
		return
	}
	comments, err := h.posts.ListComments(ctx, id)
	if err != nil {
		respondWithServiceError(w, "Error loading comments", err)
		return
	}

	viewer := GetUserFromContext(ctx)
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{Comment: c, CanDelete: service.CanModerate(viewer, c.Author)})
	}

	data := PostViewData{
		PageData: h.middleware.page(r, "Post"),
		Item:     item,
		Comments: views,
		Draft:    draft,
	}
	data.Error = errMsg
	render(w, h.templates, "post.tmpl", status, data)
}

// CreateComment adds a comment to a post
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	content := r.FormValue("content")
	if _, err := h.posts.CreateComment(r.Context(), actorName(r), id, content); err != nil {
		status, msg := StatusFor(err)
		if status != http.StatusBadRequest {
			respondWithError(w, status, msg, "Error creating comment", err)
			return
		}
		h.renderPost(w, r, id, status, msg, content)
		return
	}

	http.Redirect(w, r, "/post/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// ToggleLike likes or unlikes a post
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if _, _, err := h.likes.ToggleLike(r.Context(), actorName(r), id); err != nil {
		respondWithServiceError(w, "Error toggling like", err)
		return
	}
	http.Redirect(w, r, safeNext(r, "/post/"+strconv.FormatInt(id, 10)), http.StatusSeeOther)
}

// DeletePost removes the caller's own post, or any post for an admin
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.posts.DeletePost(r.Context(), actorName(r), id); err != nil {
		respondWithServiceError(w, "Error deleting post", err)
		return
	}
	http.Redirect(w, r, safeNext(r, "/"), http.StatusSeeOther)
}

// DeleteComment removes the caller's own comment, or any comment for an admin
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.posts.DeleteComment(r.Context(), actorName(r), id); err != nil {
		respondWithServiceError(w, "Error deleting comment", err)
		return
	}
	http.Redirect(w, r, safeNext(r, "/"), http.StatusSeeOther)
}

package handlers

import "heartbridge/internal/models"

// PageData is shared by every page: the header reads it
type PageData struct {
	Title     string
	User      *models.User
	CSRFToken string
	Error     string
	Success   string
}

type LoginViewData struct {
	PageData
	Nickname string
}

type RegisterViewData struct {
	PageData
	Nickname string
	Role     string
}

type FeedViewData struct {
	PageData
	Heading string
	// Path is where like buttons return to
	Path  string
	Items []models.FeedItem
}

type CommentView struct {
	models.Comment
	CanDelete bool
}

type PostViewData struct {
	PageData
	Item     *models.FeedItem
	Comments []CommentView
	Draft    string
}

type NewPostViewData struct {
	PageData
	Content string
}

type AdminViewData struct {
	PageData
	Stats    *models.Stats
	Pending  []models.AdminRequest
	Users    []models.User
	Posts    []models.FeedItem
	Comments []models.Comment
}

type AdminRequestViewData struct {
	PageData
	Requests   []models.AdminRequest
	HasPending bool
}

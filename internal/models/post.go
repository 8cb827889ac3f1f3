package models

import "time"

// Post is a short text published by a user. AuthorRole and AuthorAvatar are
// joined from users at read time and are empty when the author row is gone.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	Author       string    `db:"author" json:"author"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	AuthorRole   Role      `db:"author_role" json:"author_role,omitempty"`
	AuthorAvatar string    `db:"author_avatar" json:"author_avatar,omitempty"`
}

// Comment belongs to exactly one post
type Comment struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	Author       string    `db:"author" json:"author"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	AuthorRole   Role      `db:"author_role" json:"author_role,omitempty"`
	AuthorAvatar string    `db:"author_avatar" json:"author_avatar,omitempty"`
}

// Like records that a nickname liked a post. At most one per pair.
type Like struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	Nickname  string    `db:"nickname" json:"nickname"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	Role   Role
	Author string
}

// FeedItem is a post decorated for a particular viewer
type FeedItem struct {
	Post
	LikeCount    int  `json:"like_count"`
	CommentCount int  `json:"comment_count"`
	Liked        bool `json:"liked"`
	CanDelete    bool `json:"can_delete"`
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/models"
)

func TestCreatePost(t *testing.T) {
	svc, store := fixture(t)
	store.AddBadWords("darn")
	mustRegister(t, svc, "alice", models.RoleParent)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		content string
		wantErr error
	}{
		{"valid", "alice", "  hello family  ", nil},
		{"empty", "alice", "   ", apperrors.ErrValidation},
		{"too long", "alice", strings.Repeat("a", 2001), apperrors.ErrValidation},
		{"blocked word", "alice", "Darn it!", apperrors.ErrContentRejected},
		{"anonymous", "", "hi", apperrors.ErrForbidden},
		{"unknown author", "ghost", "hi", apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := svc.Posts.CreatePost(ctx, tt.actor, tt.content)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreatePost() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreatePost() error = %v", err)
			}
			if post.ID == 0 {
				t.Error("post id not assigned")
			}
			if post.Content != "hello family" {
				t.Errorf("Content = %q, want trimmed", post.Content)
			}
			if post.AuthorRole != models.RoleParent {
				t.Errorf("AuthorRole = %q", post.AuthorRole)
			}
		})
	}
}

func TestContentRejectedListsWords(t *testing.T) {
	svc, store := fixture(t)
	store.AddBadWords("darn", "heck")
	mustRegister(t, svc, "alice", models.RoleParent)

	_, err := svc.Posts.CreatePost(context.Background(), "alice", "heck, darn, darn")
	var rejected *apperrors.ContentRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("error = %v, want ContentRejected", err)
	}
	if strings.Join(rejected.Words, ",") != "darn,heck" {
		t.Errorf("Words = %v", rejected.Words)
	}
}

func TestListPostsOrderAndFilters(t *testing.T) {
	svc, _ := fixture(t)
	svc.Posts.now = tick(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "kid", models.RoleChild)

	first := mustPost(t, svc, "mum", "first")
	second := mustPost(t, svc, "kid", "second")
	third := mustPost(t, svc, "mum", "third")

	tests := []struct {
		name   string
		filter models.PostFilter
		want   []int64
	}{
		{"all newest first", models.PostFilter{}, []int64{third.ID, second.ID, first.ID}},
		{"children", models.PostFilter{Role: models.RoleChild}, []int64{second.ID}},
		{"parents", models.PostFilter{Role: models.RoleParent}, []int64{third.ID, first.ID}},
		{"by author", models.PostFilter{Author: "kid"}, []int64{second.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := svc.Posts.ListPosts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListPosts() error = %v", err)
			}
			if len(posts) != len(tt.want) {
				t.Fatalf("got %d posts, want %d", len(posts), len(tt.want))
			}
			for i, id := range tt.want {
				if posts[i].ID != id {
					t.Errorf("posts[%d].ID = %d, want %d", i, posts[i].ID, id)
				}
			}
		})
	}

	if _, err := svc.Posts.ListPosts(ctx, models.PostFilter{Role: "uncle"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("ListPosts(bad role) error = %v, want ErrValidation", err)
	}
}

func TestFeedDecoration(t *testing.T) {
	svc, _ := fixture(t)
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "kid", models.RoleChild)
	post := mustPost(t, svc, "mum", "dinner at six")

	if _, err := svc.Posts.CreateComment(ctx, "kid", post.ID, "ok!"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if _, _, err := svc.Likes.ToggleLike(ctx, "kid", post.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	items, err := svc.Posts.Feed(ctx, "kid", models.PostFilter{})
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Feed() returned %d items", len(items))
	}
	item := items[0]
	if item.LikeCount != 1 || item.CommentCount != 1 || !item.Liked || item.CanDelete {
		t.Errorf("kid view = %+v", item)
	}

	anon, err := svc.Posts.Feed(ctx, "", models.PostFilter{})
	if err != nil {
		t.Fatalf("Feed(anonymous) error = %v", err)
	}
	if anon[0].Liked || anon[0].CanDelete {
		t.Errorf("anonymous view = %+v", anon[0])
	}

	owner, err := svc.Posts.FeedItem(ctx, "mum", post.ID)
	if err != nil {
		t.Fatalf("FeedItem() error = %v", err)
	}
	if !owner.CanDelete || owner.Liked {
		t.Errorf("owner view = %+v", owner)
	}
}

func TestDeletePostPermissionsAndCascade(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "kid", models.RoleChild)
	mustRegister(t, svc, "boss", models.RoleParent)
	mustAdmin(t, svc, "boss")

	post := mustPost(t, svc, "mum", "hello")
	if _, err := svc.Posts.CreateComment(ctx, "kid", post.ID, "hi mum"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if _, _, err := svc.Likes.ToggleLike(ctx, "kid", post.ID); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	if err := svc.Posts.DeletePost(ctx, "kid", post.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("DeletePost(stranger) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Posts.GetPost(ctx, post.ID); err != nil {
		t.Fatalf("post vanished after forbidden delete: %v", err)
	}

	if err := svc.Posts.DeletePost(ctx, "boss", post.ID); err != nil {
		t.Fatalf("DeletePost(admin) error = %v", err)
	}
	if _, err := svc.Posts.GetPost(ctx, post.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetPost() after delete error = %v, want ErrNotFound", err)
	}

	stats, err := store.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if stats.Posts != 0 || stats.Comments != 0 || stats.Likes != 0 {
		t.Errorf("cascade left %+v", stats)
	}

	if err := svc.Posts.DeletePost(ctx, "boss", post.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("DeletePost(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAuthorDeletesOwnPost(t *testing.T) {
	svc, _ := fixture(t)
	mustRegister(t, svc, "kid", models.RoleChild)
	post := mustPost(t, svc, "kid", "mine")

	if err := svc.Posts.DeletePost(context.Background(), "kid", post.ID); err != nil {
		t.Fatalf("DeletePost(author) error = %v", err)
	}
}

func TestComments(t *testing.T) {
	svc, _ := fixture(t)
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "kid", models.RoleChild)
	mustRegister(t, svc, "dad", models.RoleParent)
	post := mustPost(t, svc, "mum", "hello")

	if _, err := svc.Posts.CreateComment(ctx, "kid", 999, "lost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("CreateComment(missing post) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Posts.CreateComment(ctx, "kid", post.ID, strings.Repeat("x", 501)); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("CreateComment(too long) error = %v, want ErrValidation", err)
	}

	c1, err := svc.Posts.CreateComment(ctx, "kid", post.ID, "one")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	c2, err := svc.Posts.CreateComment(ctx, "dad", post.ID, "two")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := svc.Posts.ListComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 2 || comments[0].ID != c1.ID || comments[1].ID != c2.ID {
		t.Fatalf("ListComments() = %+v", comments)
	}
	if comments[0].AuthorRole != models.RoleChild {
		t.Errorf("AuthorRole = %q", comments[0].AuthorRole)
	}

	// the post author does not own other people's comments
	if err := svc.Posts.DeleteComment(ctx, "mum", c1.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("DeleteComment(post author) error = %v, want ErrForbidden", err)
	}
	if err := svc.Posts.DeleteComment(ctx, "kid", c1.ID); err != nil {
		t.Errorf("DeleteComment(author) error = %v", err)
	}
	if err := svc.Posts.DeleteComment(ctx, "kid", c1.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("DeleteComment(again) error = %v, want ErrNotFound", err)
	}
}

func TestListAllCommentsRequiresAdmin(t *testing.T) {
	svc, _ := fixture(t)
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "boss", models.RoleParent)
	mustAdmin(t, svc, "boss")
	post := mustPost(t, svc, "mum", "hello")
	if _, err := svc.Posts.CreateComment(ctx, "mum", post.ID, "self reply"); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if _, err := svc.Posts.ListAllComments(ctx, "mum"); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("ListAllComments(non-admin) error = %v, want ErrForbidden", err)
	}
	all, err := svc.Posts.ListAllComments(ctx, "boss")
	if err != nil || len(all) != 1 {
		t.Errorf("ListAllComments(admin) = %d, %v", len(all), err)
	}
}

func TestToggleLike(t *testing.T) {
	svc, _ := fixture(t)
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "kid", models.RoleChild)
	post := mustPost(t, svc, "mum", "hello")

	steps := []struct {
		actor     string
		wantLiked bool
		wantCount int
	}{
		{"kid", true, 1},
		{"mum", true, 2},
		{"kid", false, 1},
		{"kid", true, 2},
	}
	for i, step := range steps {
		liked, count, err := svc.Likes.ToggleLike(ctx, step.actor, post.ID)
		if err != nil {
			t.Fatalf("step %d: ToggleLike() error = %v", i, err)
		}
		if liked != step.wantLiked || count != step.wantCount {
			t.Errorf("step %d: got (%v, %d), want (%v, %d)", i, liked, count, step.wantLiked, step.wantCount)
		}
	}

	if _, _, err := svc.Likes.ToggleLike(ctx, "kid", 999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ToggleLike(missing) error = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.Likes.ToggleLike(ctx, "", post.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("ToggleLike(anonymous) error = %v, want ErrForbidden", err)
	}
	if liked, _ := svc.Likes.HasLiked(ctx, post.ID, ""); liked {
		t.Error("HasLiked(empty) = true")
	}
}

func TestToggleLikeConcurrent(t *testing.T) {
	svc, _ := fixture(t)
	ctx := context.Background()
	mustRegister(t, svc, "mum", models.RoleParent)
	mustRegister(t, svc, "kid", models.RoleChild)
	post := mustPost(t, svc, "mum", "hello")

	// an even number of toggles by one user must leave no like behind
	const toggles = 20
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Likes.ToggleLike(ctx, "kid", post.ID); err != nil {
				t.Errorf("ToggleLike() error = %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := svc.Likes.LikeCount(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikeCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("LikeCount() = %d, want 0", count)
	}
	if svc.Likes.locks.size() != 0 {
		t.Errorf("keyed mutex still holds %d keys", svc.Likes.locks.size())
	}
}

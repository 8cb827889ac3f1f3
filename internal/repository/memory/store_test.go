package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/models"
)

func TestIDsComeFromCounters(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	first := &models.Post{Author: "a", Content: "1", CreatedAt: now}
	second := &models.Post{Author: "a", Content: "2", CreatedAt: now}
	s.CreatePost(ctx, first)
	s.CreatePost(ctx, second)
	s.DeletePost(ctx, second.ID)

	third := &models.Post{Author: "a", Content: "3", CreatedAt: now}
	s.CreatePost(ctx, third)
	if third.ID == second.ID || third.ID <= first.ID {
		t.Errorf("ids reused or not increasing: %d, %d, %d", first.ID, second.ID, third.ID)
	}
}

func TestStoredValuesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &models.User{Nickname: "a", Role: models.RoleParent}
	s.CreateUser(ctx, u)
	u.IsAdmin = true

	got, _ := s.GetUser(ctx, "a")
	if got.IsAdmin {
		t.Error("mutating the caller's struct must not change the store")
	}
}

func TestDecoratesAuthorFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateUser(ctx, &models.User{Nickname: "kid", Role: models.RoleChild, Avatar: "k.png"})
	p := &models.Post{Author: "kid", Content: "hi", CreatedAt: time.Now()}
	s.CreatePost(ctx, p)

	got, _ := s.GetPost(ctx, p.ID)
	if got.AuthorRole != models.RoleChild || got.AuthorAvatar != "k.png" {
		t.Errorf("GetPost() = %+v", got)
	}

	parents, _ := s.ListPosts(ctx, models.PostFilter{Role: models.RoleParent})
	if len(parents) != 0 {
		t.Errorf("parent filter returned %d posts", len(parents))
	}
}

func TestDecideRequest(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()
	s.CreateUser(ctx, &models.User{Nickname: "mom", Role: models.RoleParent})

	req, created, _ := s.CreatePendingRequest(ctx, "mom", now)
	if !created {
		t.Fatal("expected creation")
	}
	if _, created, _ := s.CreatePendingRequest(ctx, "mom", now); created {
		t.Error("second pending request should not be created")
	}

	if _, err := s.DecideRequest(ctx, req.ID, models.StatusApproved, "dev1", now); err != nil {
		t.Fatal(err)
	}
	u, _ := s.GetUser(ctx, "mom")
	if !u.IsAdmin {
		t.Error("approval should grant admin")
	}
	if _, err := s.DecideRequest(ctx, req.ID, models.StatusRejected, "dev1", now); !errors.Is(err, apperrors.ErrRequestAlreadyDecided) {
		t.Errorf("re-decide error = %v", err)
	}
	if _, err := s.DecideRequest(ctx, 42, models.StatusRejected, "dev1", now); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown request error = %v", err)
	}
}

func TestConcurrentToggles(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := &models.Post{Author: "a", Content: "x", CreatedAt: time.Now()}
	s.CreatePost(ctx, p)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleLike(ctx, p.ID, "b", time.Now())
		}()
	}
	wg.Wait()

	// 50 toggles by the same user end unliked
	if n, _ := s.CountLikes(ctx, p.ID); n != 0 {
		t.Errorf("CountLikes() = %d, want 0", n)
	}
}

func TestValidateWords(t *testing.T) {
	s := New()
	s.AddBadWords("Darn", " heck ")
	found, _ := s.ValidateWords(context.Background(), []string{"heck", "hello", "DARN", "heck"})
	if len(found) != 2 || found[0] != "darn" || found[1] != "heck" {
		t.Errorf("ValidateWords() = %v", found)
	}
}

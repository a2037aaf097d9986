package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/social-connect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createTestPost(t *testing.T, repo *MemoryPostRepository, author string, date time.Time) *models.Post {
	t.Helper()
	post := &models.Post{User: author, Text: "hello", Date: date}
	if err := repo.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestMemoryPostMalformedID(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()

	if _, err := repo.GetPostByID(ctx, "not-an-object-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeletePost(ctx, "123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.AddLike(ctx, "zz", models.Like{User: "u1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetPostByID(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPostListOrder(t *testing.T) {
	repo := NewMemoryPostRepository()
	base := time.Now()
	p1 := createTestPost(t, repo, "u1", base.Add(time.Second))
	p2 := createTestPost(t, repo, "u1", base.Add(2*time.Second))
	p0 := createTestPost(t, repo, "u1", base)

	posts, err := repo.GetAllPosts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []primitive.ObjectID{p2.ID, p1.ID, p0.ID}
	if len(posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(posts))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id.Hex(), posts[i].ID.Hex())
		}
	}
}

func TestMemoryPostLikeGuards(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()
	post := createTestPost(t, repo, "u1", time.Now())
	id := post.ID.Hex()

	if _, err := repo.AddLike(ctx, id, models.Like{ID: primitive.NewObjectID(), User: "u2"}); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := repo.AddLike(ctx, id, models.Like{ID: primitive.NewObjectID(), User: "u2"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	likes, err := repo.RemoveLike(ctx, id, "u2")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if len(likes) != 0 {
		t.Fatalf("expected no likes, got %d", len(likes))
	}
	if _, err := repo.RemoveLike(ctx, id, "u2"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryPostConcurrentLikes(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()
	post := createTestPost(t, repo, "u1", time.Now())
	id := post.ID.Hex()

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddLike(ctx, id, models.Like{ID: primitive.NewObjectID(), User: "same-user"}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Fatalf("expected exactly one accepted like, got %d", accepted)
	}
	got, err := repo.GetPostByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Likes) != 1 {
		t.Fatalf("expected 1 like, got %d", len(got.Likes))
	}
}

func TestMemoryPostReadsAreCopies(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()
	post := createTestPost(t, repo, "u1", time.Now())

	got, err := repo.GetPostByID(ctx, post.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Likes = append(got.Likes, models.Like{User: "intruder"})

	again, err := repo.GetPostByID(ctx, post.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(again.Likes) != 0 {
		t.Fatalf("stored post was mutated through a read")
	}
}

func TestMemoryUserDuplicateEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.CreateUser(ctx, &models.User{Name: "A", Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateUser(ctx, &models.User{Name: "B", Email: "a@x.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	user, err := repo.GetUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Name != "A" {
		t.Fatalf("unexpected user %+v", user)
	}
	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

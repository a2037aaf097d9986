package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/social-connect/backend/internal/models"
	"github.com/anonto42/social-connect/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postFixture struct {
	svc   *PostService
	posts *repositories.MemoryPostRepository
	users *repositories.MemoryUserRepository
	alice string
	bob   string
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	ctx := context.Background()
	users := repositories.NewMemoryUserRepository()
	posts := repositories.NewMemoryPostRepository()

	alice := &models.User{Name: "Alice", Email: "alice@x.com", Avatar: "//avatar/alice"}
	bob := &models.User{Name: "Bob", Email: "bob@x.com", Avatar: "//avatar/bob"}
	for _, u := range []*models.User{alice, bob} {
		if err := users.CreateUser(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	return &postFixture{
		svc:   NewPostService(posts, users),
		posts: posts,
		users: users,
		alice: alice.ID,
		bob:   bob.ID,
	}
}

func (f *postFixture) createPost(t *testing.T, userID, text string) *models.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestCreatePost(t *testing.T) {
	f := newPostFixture(t)

	post := f.createPost(t, f.alice, "hi")
	if post.ID.IsZero() {
		t.Fatalf("expected post id")
	}
	if post.User != f.alice || post.Name != "Alice" || post.Avatar != "//avatar/alice" {
		t.Fatalf("unexpected author snapshot: %+v", post)
	}
	if post.Likes == nil || len(post.Likes) != 0 || post.Comments == nil || len(post.Comments) != 0 {
		t.Fatalf("expected empty likes and comments, got %+v", post)
	}
}

func TestCreatePostValidation(t *testing.T) {
	f := newPostFixture(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.Create(context.Background(), f.alice, text)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("text %q: expected ValidationError, got %v", text, err)
		}
	}
	posts, _ := f.svc.List(context.Background())
	if len(posts) != 0 {
		t.Fatalf("expected no posts stored, got %d", len(posts))
	}
}

func TestCreatePostUnknownUser(t *testing.T) {
	f := newPostFixture(t)
	if _, err := f.svc.Create(context.Background(), "ghost", "hi"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	f := newPostFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	p1 := f.createPost(t, f.alice, "first")
	p2 := f.createPost(t, f.bob, "second")

	posts, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != p2.ID || posts[1].ID != p1.ID {
		t.Fatalf("expected [P2, P1], got %+v", posts)
	}
}

func TestGetPostNotFound(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	for _, id := range []string{"bogus", "", primitive.NewObjectID().Hex()} {
		if _, err := f.svc.Get(ctx, id); !errors.Is(err, ErrPostNotFound) {
			t.Fatalf("id %q: expected ErrPostNotFound, got %v", id, err)
		}
	}
}

func TestDeletePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.alice, "hi")
	id := post.ID.Hex()

	if _, err := f.svc.Like(ctx, f.bob, id); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := f.svc.AddComment(ctx, f.bob, id, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := f.svc.Delete(ctx, f.bob, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	unchanged, err := f.svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get after forbidden delete: %v", err)
	}
	if len(unchanged.Likes) != 1 || len(unchanged.Comments) != 1 {
		t.Fatalf("post changed by forbidden delete: %+v", unchanged)
	}

	if err := f.svc.Delete(ctx, f.alice, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, id); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after delete, got %v", err)
	}
}

func TestDeleteMissingPostIsNotFoundForAnyone(t *testing.T) {
	f := newPostFixture(t)
	if err := f.svc.Delete(context.Background(), f.bob, primitive.NewObjectID().Hex()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestLikeRejectsSecondLike(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()

	likes, err := f.svc.Like(ctx, f.alice, id)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if len(likes) != 1 || likes[0].User != f.alice {
		t.Fatalf("unexpected likes %+v", likes)
	}

	if _, err := f.svc.Like(ctx, f.alice, id); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	post, _ := f.svc.Get(ctx, id)
	if len(post.Likes) != 1 {
		t.Fatalf("expected 1 like after rejected like, got %d", len(post.Likes))
	}
}

func TestLikeUnlikeToggle(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()

	extra := &models.User{Name: "Carol", Email: "carol@x.com"}
	if err := f.users.CreateUser(ctx, extra); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := f.svc.Like(ctx, f.alice, id); err != nil {
		t.Fatalf("like: %v", err)
	}
	before, err := f.svc.Like(ctx, extra.ID, id)
	if err != nil {
		t.Fatalf("like: %v", err)
	}

	likes, err := f.svc.Like(ctx, f.bob, id)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if likes[0].User != f.bob {
		t.Fatalf("expected newest like at head, got %+v", likes)
	}

	after, err := f.svc.Unlike(ctx, f.bob, id)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d likes, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("position %d changed: %+v vs %+v", i, after[i], before[i])
		}
	}
}

func TestUnlikeNotLiked(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()

	if _, err := f.svc.Unlike(ctx, f.bob, id); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
	if _, err := f.svc.Unlike(ctx, f.bob, "nope"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := f.svc.Like(ctx, f.bob, primitive.NewObjectID().Hex()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()

	if _, err := f.svc.AddComment(ctx, f.bob, id, "first"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	comments, err := f.svc.AddComment(ctx, f.alice, id, "second")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Text != "second" || comments[0].Name != "Alice" || comments[1].Name != "Bob" {
		t.Fatalf("unexpected comment order or snapshot: %+v", comments)
	}
	if comments[0].ID == comments[1].ID {
		t.Fatalf("comment ids must be unique")
	}

	var verr *ValidationError
	if _, err := f.svc.AddComment(ctx, f.bob, id, " "); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := f.svc.AddComment(ctx, f.bob, primitive.NewObjectID().Hex(), "x"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestDeleteCommentRemovesMatchedComment(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()

	// Two comments by the same author: deleting the older one must not
	// remove the newer one.
	if _, err := f.svc.AddComment(ctx, f.bob, id, "older"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	comments, err := f.svc.AddComment(ctx, f.bob, id, "newer")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	older := comments[1]

	remaining, err := f.svc.DeleteComment(ctx, f.bob, id, older.ID.Hex())
	if err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Text != "newer" {
		t.Fatalf("expected only the newer comment to remain, got %+v", remaining)
	}
}

func TestDeleteCommentErrors(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()

	comments, err := f.svc.AddComment(ctx, f.bob, id, "mine")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	cid := comments[0].ID.Hex()

	if _, err := f.svc.DeleteComment(ctx, f.alice, id, cid); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.DeleteComment(ctx, f.bob, id, primitive.NewObjectID().Hex()); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	if _, err := f.svc.DeleteComment(ctx, f.bob, id, "bad"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	if _, err := f.svc.DeleteComment(ctx, f.alice, primitive.NewObjectID().Hex(), cid); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	post, _ := f.svc.Get(ctx, id)
	if len(post.Comments) != 1 {
		t.Fatalf("comment removed by failed delete")
	}
}

// racingPostRepository reports a failed guard on every mutation, as if
// another request changed the post between the read and the update.
type racingPostRepository struct {
	*repositories.MemoryPostRepository
}

func (r racingPostRepository) AddLike(context.Context, string, models.Like) ([]models.Like, error) {
	return nil, repositories.ErrConflict
}

func (r racingPostRepository) RemoveLike(context.Context, string, string) ([]models.Like, error) {
	return nil, repositories.ErrConflict
}

func (r racingPostRepository) RemoveComment(context.Context, string, primitive.ObjectID, string) ([]models.Comment, error) {
	return nil, repositories.ErrConflict
}

func TestConcurrentChangeMapsToStateErrors(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	id := f.createPost(t, f.alice, "hi").ID.Hex()
	if _, err := f.svc.Like(ctx, f.bob, id); err != nil {
		t.Fatalf("like: %v", err)
	}
	comments, err := f.svc.AddComment(ctx, f.bob, id, "c")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}

	racing := NewPostService(racingPostRepository{f.posts}, f.users)
	if _, err := racing.Like(ctx, f.alice, id); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	if _, err := racing.Unlike(ctx, f.bob, id); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
	if _, err := racing.DeleteComment(ctx, f.bob, id, comments[0].ID.Hex()); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/social-connect/backend/internal/models"
	"github.com/anonto42/social-connect/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostService owns the lifecycle of posts and their embedded likes and
// comments. Every method expects an already authenticated user id.
type PostService struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	now   func() time.Time
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository) *PostService {
	return &PostService{posts: posts, users: users, now: time.Now}
}

// Create stores a new post by userID, snapshotting the author's name and
// avatar.
func (s *PostService) Create(ctx context.Context, userID, text string) (*models.Post, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		User:     userID,
		Text:     text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     s.now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns every post, most recent first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.posts.GetAllPosts(ctx)
}

// Get returns the post with postID. Malformed ids are reported as
// ErrPostNotFound.
func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	return post, nil
}

// Delete removes a post owned by userID together with its likes and
// comments.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.User != userID {
		return ErrForbidden
	}
	return mapNotFound(s.posts.DeletePost(ctx, postID), ErrPostNotFound)
}

// Like adds userID's like at the head of the post's likes. Liking twice is
// rejected with ErrAlreadyLiked.
func (s *PostService) Like(ctx context.Context, userID, postID string) ([]models.Like, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, ErrAlreadyLiked
	}

	likes, err := s.posts.AddLike(ctx, postID, models.Like{ID: primitive.NewObjectID(), User: userID})
	if errors.Is(err, repositories.ErrConflict) {
		return nil, ErrAlreadyLiked
	}
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	return likes, nil
}

// Unlike removes userID's like. ErrNotLiked when there is none.
func (s *PostService) Unlike(ctx context.Context, userID, postID string) ([]models.Like, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.LikedBy(userID) {
		return nil, ErrNotLiked
	}

	likes, err := s.posts.RemoveLike(ctx, postID, userID)
	if errors.Is(err, repositories.ErrConflict) {
		return nil, ErrNotLiked
	}
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	return likes, nil
}

// AddComment adds a comment by userID at the head of the post's comments.
func (s *PostService) AddComment(ctx context.Context, userID, postID, text string) ([]models.Comment, error) {
	text, err := requireText(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:     primitive.NewObjectID(),
		User:   userID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.now(),
	}
	comments, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	return comments, nil
}

// DeleteComment removes the comment identified by commentID. Only its
// author may remove it.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	comment, ok := post.FindComment(cid)
	if !ok {
		return nil, ErrCommentNotFound
	}
	if comment.User != userID {
		return nil, ErrForbidden
	}

	comments, err := s.posts.RemoveComment(ctx, postID, cid, userID)
	if errors.Is(err, repositories.ErrConflict) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, mapNotFound(err, ErrPostNotFound)
	}
	return comments, nil
}

func (s *PostService) author(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func requireText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Field: "text", Message: "Text is required"}
	}
	return text, nil
}

// mapNotFound translates repositories.ErrNotFound into target and passes
// other errors through unchanged.
func mapNotFound(err, target error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return target
	}
	return err
}

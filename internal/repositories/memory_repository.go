package repositories

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/anonto42/social-connect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository is a process-local UserRepository used with the
// memory storage backend and in tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	nextID  int
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateEmail
	}
	r.nextID++
	user.ID = strconv.Itoa(r.nextID)
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

// MemoryPostRepository is a process-local PostRepository. Ids are
// ObjectIDs so malformed ids behave as with MongoDB.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[primitive.ObjectID]models.Post)}
}

func (r *MemoryPostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = primitive.NewObjectID()
	post.Normalize()
	r.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *MemoryPostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[objID]
	if !ok {
		return nil, ErrNotFound
	}
	post = clonePost(post)
	return &post, nil
}

func (r *MemoryPostRepository) GetAllPosts(_ context.Context) ([]models.Post, error) {
	r.mu.RLock()
	posts := make([]models.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, clonePost(post))
	}
	r.mu.RUnlock()

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts, nil
}

func (r *MemoryPostRepository) DeletePost(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[objID]; !ok {
		return ErrNotFound
	}
	delete(r.posts, objID)
	return nil
}

func (r *MemoryPostRepository) AddLike(_ context.Context, postID string, like models.Like) ([]models.Like, error) {
	var likes []models.Like
	err := r.mutate(postID, func(post *models.Post) error {
		if post.LikedBy(like.User) {
			return ErrConflict
		}
		post.Likes = append([]models.Like{like}, post.Likes...)
		likes = append([]models.Like{}, post.Likes...)
		return nil
	})
	return likes, err
}

func (r *MemoryPostRepository) RemoveLike(_ context.Context, postID, userID string) ([]models.Like, error) {
	var likes []models.Like
	err := r.mutate(postID, func(post *models.Post) error {
		idx := -1
		for i, like := range post.Likes {
			if like.User == userID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrConflict
		}
		post.Likes = append(post.Likes[:idx:idx], post.Likes[idx+1:]...)
		likes = append([]models.Like{}, post.Likes...)
		return nil
	})
	return likes, err
}

func (r *MemoryPostRepository) AddComment(_ context.Context, postID string, comment models.Comment) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.mutate(postID, func(post *models.Post) error {
		post.Comments = append([]models.Comment{comment}, post.Comments...)
		comments = append([]models.Comment{}, post.Comments...)
		return nil
	})
	return comments, err
}

func (r *MemoryPostRepository) RemoveComment(_ context.Context, postID string, commentID primitive.ObjectID, userID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.mutate(postID, func(post *models.Post) error {
		idx := -1
		for i, comment := range post.Comments {
			if comment.ID == commentID && comment.User == userID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrConflict
		}
		post.Comments = append(post.Comments[:idx:idx], post.Comments[idx+1:]...)
		comments = append([]models.Comment{}, post.Comments...)
		return nil
	})
	return comments, err
}

// mutate runs fn on a copy of the post under the write lock and stores the
// copy only when fn succeeds.
func (r *MemoryPostRepository) mutate(postID string, fn func(post *models.Post) error) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[objID]
	if !ok {
		return ErrNotFound
	}
	post = clonePost(post)
	if err := fn(&post); err != nil {
		return err
	}
	r.posts[objID] = post
	return nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]models.Like{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

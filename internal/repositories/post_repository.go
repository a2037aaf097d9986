package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/social-connect/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations.
//
// The like and comment mutations are single conditional updates: AddLike
// only applies when the user has not liked the post, RemoveLike only when
// they have, RemoveComment only when the comment exists and belongs to
// userID. A failed guard on an existing post yields ErrConflict.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID string, like models.Like) ([]models.Like, error)
	RemoveLike(ctx context.Context, postID, userID string) ([]models.Like, error)
	AddComment(ctx context.Context, postID string, comment models.Comment) ([]models.Comment, error)
	RemoveComment(ctx context.Context, postID string, commentID primitive.ObjectID, userID string) ([]models.Comment, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the index backing the date-descending listing.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	return nil
}

// CreatePost inserts post, assigning its ID.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.Normalize()
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	post.Normalize()
	return &post, nil
}

// GetAllPosts retrieves every post, most recent first.
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike pushes like to the head of the likes array unless its user
// already liked the post.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID string, like models.Like) ([]models.Like, error) {
	filter := bson.M{"likes.user": bson.M{"$ne": like.User}}
	update := bson.M{"$push": bson.M{"likes": bson.M{"$each": bson.A{like}, "$position": 0}}}

	post, err := r.updateGuarded(ctx, postID, filter, update)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// RemoveLike pulls userID's like if present.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	filter := bson.M{"likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}

	post, err := r.updateGuarded(ctx, postID, filter, update)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment pushes comment to the head of the comments array.
func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment models.Comment) ([]models.Comment, error) {
	update := bson.M{"$push": bson.M{"comments": bson.M{"$each": bson.A{comment}, "$position": 0}}}

	post, err := r.updateGuarded(ctx, postID, bson.M{}, update)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// RemoveComment pulls the comment with commentID if it was written by userID.
func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID string, commentID primitive.ObjectID, userID string) ([]models.Comment, error) {
	filter := bson.M{"comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "user": userID}}}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}

	post, err := r.updateGuarded(ctx, postID, filter, update)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// updateGuarded applies update to the post when guard matches and returns
// the updated document. When nothing matched it tells a missing post
// (ErrNotFound) from a failed guard (ErrConflict).
func (r *MongoPostRepository) updateGuarded(ctx context.Context, postID string, guard bson.M, update bson.M) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{"_id": objID}
	for k, v := range guard {
		filter[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err == nil {
		post.Normalize()
		return &post, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update post: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("count post: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

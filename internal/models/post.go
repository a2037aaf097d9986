package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a post document. Likes and comments are embedded and always
// read and written with their parent; index 0 holds the most recent entry.
type Post struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User     string             `json:"user" bson:"user"` // author user id
	Text     string             `json:"text" bson:"text"`
	Name     string             `json:"name" bson:"name"`     // author name at creation time
	Avatar   string             `json:"avatar" bson:"avatar"` // author avatar at creation time
	Likes    []Like             `json:"likes" bson:"likes"`
	Comments []Comment          `json:"comments" bson:"comments"`
	Date     time.Time          `json:"date" bson:"date"`
}

// LikedBy reports whether userID is among the post's likes.
func (p *Post) LikedBy(userID string) bool {
	for _, like := range p.Likes {
		if like.User == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id.
func (p *Post) FindComment(commentID primitive.ObjectID) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

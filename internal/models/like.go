package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Like records that a user liked a post. A user appears at most once among
// a post's likes.
type Like struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id"`
	User string             `json:"user" bson:"user"`
}

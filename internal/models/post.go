package models

import (
	"time"
)

// Post is a piece of content stored in MongoDB. The graph subsystem never
// mutates a post; it only reads ID, AuthorID and CreatedAt. AuthorID and
// CreatedAt are immutable once the post is created.
type Post struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"` // ObjectID hex, or an opaque string from other backings
	AuthorID  uint      `json:"author_id" bson:"author_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one rating per (product, user) pair; the unique index enforces it.
type Review struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Product      primitive.ObjectID  `json:"product" bson:"product"`
	User         primitive.ObjectID  `json:"user" bson:"user"`
	UserName     string              `json:"user_name" bson:"user_name"`
	Order        *primitive.ObjectID `json:"order,omitempty" bson:"order,omitempty"`
	Rating       int                 `json:"rating" bson:"rating"`
	Title        string              `json:"title,omitempty" bson:"title,omitempty"`
	Comment      string              `json:"comment,omitempty" bson:"comment,omitempty"`
	HelpfulVotes int64               `json:"helpful_votes" bson:"helpful_votes"`
	IsApproved   bool                `json:"is_approved" bson:"is_approved"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

type CreateReviewInput struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

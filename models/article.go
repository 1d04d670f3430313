package models

import "time"

// Article is a health article published by the back office.
type Article struct {
	ID        string    `bson:"id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Summary   string    `bson:"summary,omitempty" json:"summary,omitempty"`
	Body      string    `bson:"body" json:"body"`
	Author    string    `bson:"author,omitempty" json:"author,omitempty"`
	Published bool      `bson:"published" json:"published"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

package models

import (
	"time"
)

// Post is a row of the posts table joined with its author's email
type Post struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	AuthorEmail string    `json:"email" db:"email"`
}

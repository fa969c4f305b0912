package models

import (
	"time"
)

// Comment is a row of the comments table. ParentID is nil for root comments
type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// MaxCommentLength is the longest comment text the application accepts
const MaxCommentLength = 255

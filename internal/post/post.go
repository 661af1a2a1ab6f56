// Package post defines the post model. Posts are owned by a user and
// are removed as the first step of the account cascade deletion.
package post

import "time"

// Post is a single text post published by a user.
// Name and Avatar are denormalized from the owning user at creation time.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

type Post struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Img         string    `json:"img,omitempty"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UID         int       `json:"uid"`
	Date        time.Time `json:"date"`

	// Username is the owner's username, populated by queries that join users.
	// Empty when the post was loaded without the join.
	Username string `json:"username,omitempty"`
}

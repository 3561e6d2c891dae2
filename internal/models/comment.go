package models

import "time"

type Comment struct {
	ID        int64        `json:"id"`
	Text      string       `json:"text"`
	MovieID   int64        `json:"movie_id"`
	UserID    int64        `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
	User      UserResponse `json:"user"`
}

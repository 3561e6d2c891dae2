package models

import "time"

type User struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`
	PasswordHash        string     `json:"-"` // don’t expose hash
	IsAdmin             bool       `json:"is_admin"`
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"-"`
}

// UserResponse is the public projection of a User.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u User) Public() UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// HasLiveResetToken reports whether the user holds a reset token that is still valid at now.
func (u User) HasLiveResetToken(now time.Time) bool {
	return u.ResetToken != nil && u.ResetTokenExpiresAt != nil && now.Before(*u.ResetTokenExpiresAt)
}

package models

import "time"

// Session is an authenticated user. Token is the backend session token; passwords are never kept.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	StartedAt time.Time `json:"started_at"`
}

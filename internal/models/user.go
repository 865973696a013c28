package models

import "time"

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	IsAdmin       bool      `json:"-"`
	VerifyToken   string    `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

func NewUser(username, email, passwordHash string, now time.Time) User {
	return User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

package domain

import "time"

// User is a registered student account. PasswordHash never serializes.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	StudyYear    string    `json:"study_year,omitempty"`
	Institute    string    `json:"institute,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

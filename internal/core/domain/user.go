package domain

import "time"

// User models an identity record in the credential store. Users are created
// on signup and never deleted by this engine. The password hash is one-way
// (bcrypt) and must never appear in logs or API responses.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

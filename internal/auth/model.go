package auth

import "time"

// User is a cashier or administrator account. PasswordHash is a bcrypt hash
// and never leaves the package.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

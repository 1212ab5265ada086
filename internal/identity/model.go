package identity

import "time"

// User represents a registered wallet owner.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials carries a registration or login request.
type Credentials struct {
	Email    string
	Password string
}

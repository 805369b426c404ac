package core

import "time"

// AccessAuth is the only access level issued by this system.
const AccessAuth = "auth"

// User represents a registered account.
//
// The JSON form is the sanitized shape sent to clients: the password hash
// and the token list are never exposed.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Tokens       []SessionToken `json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// SessionToken is one live session credential attached to a user.
type SessionToken struct {
	Access string `json:"access"`
	Token  string `json:"token"`
}

// Todo is a single todo item owned by exactly one user.
//
// CompletedAt is non-nil iff Completed is true; the two fields are always
// written together.
type Todo struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completedAt"` // unix milliseconds
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SessionData is the resolved identity attached to an authenticated request.
type SessionData struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

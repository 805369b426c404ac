package core

import "errors"

// User errors
var (
	ErrEmailTaken         = errors.New("email already in use")      // 400
	ErrUserNotFound       = errors.New("user not found")            // internal: collapsed before reaching clients
	ErrInvalidCredentials = errors.New("invalid email or password") // 400
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing x-auth header") // 401
	ErrInvalidToken      = errors.New("invalid session token") // 401
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email is required")     // 400
	ErrEmailTooShort    = errors.New("email is too short")    // 400
	ErrInvalidEmail     = errors.New("invalid email format")  // 400
	ErrPasswordRequired = errors.New("password is required")  // 400
	ErrPasswordTooShort = errors.New("password is too short") // 400
	ErrTextRequired     = errors.New("todo text is required") // 400
)

// Todo errors. Ownership mismatch and absence both surface as not-found so
// callers cannot probe for other users' records.
var (
	ErrTodoNotFound = errors.New("todo not found") // 404
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired = errors.New("storage adapter is required") // 500
	ErrSecretRequired  = errors.New("secret is required")          // 500
	ErrSecretTooShort  = errors.New("secret too short")            // 500
)

package tudu

import (
	"fmt"

	"github.com/rmarchant/tudu/core"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	UserStorage    = core.UserStorage
	TodoStorage    = core.TodoStorage

	PasswordHandler = core.PasswordHandler
)

// services
type (
	AuthService = core.AuthService
	TodoService = core.TodoService
	TokenSigner = core.TokenSigner
)

// structs
type (
	User         = core.User
	SessionToken = core.SessionToken
	Todo         = core.Todo
	SessionData  = core.SessionData
	AuthResult   = core.AuthResult

	UpdateTodoInput = core.UpdateTodoInput
	TodoPatch       = core.TodoPatch
)

const (
	AccessAuth       = core.AccessAuth
	defaultSecretLen = 32
)

// Constructors & helpers (convenience re-exports)
var (
	NewBcrypt      = core.NewBcrypt
	NewArgon2      = core.NewArgon2
	NewTokenSigner = core.NewTokenSigner
)

var (
	ErrEmailTaken         = core.ErrEmailTaken
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
)

var (
	ErrEmailRequired    = core.ErrEmailRequired
	ErrEmailTooShort    = core.ErrEmailTooShort
	ErrInvalidEmail     = core.ErrInvalidEmail
	ErrPasswordRequired = core.ErrPasswordRequired
	ErrPasswordTooShort = core.ErrPasswordTooShort
	ErrTextRequired     = core.ErrTextRequired
)

var (
	ErrTodoNotFound = core.ErrTodoNotFound
)

var (
	ErrStorageRequired = core.ErrStorageRequired
	ErrSecretRequired  = core.ErrSecretRequired
	ErrSecretTooShort  = core.ErrSecretTooShort
)

type Config struct {
	// Secret signs session tokens. Required, minimum 32 characters.
	Secret string

	Database core.StorageAdapter

	// Optional config
	PasswordHasher core.PasswordHandler
}

// Tudu bundles the wired services. Construct once at startup and hand to an
// HTTP adapter; the configuration is read-only afterwards.
type Tudu struct {
	Auth  *core.AuthService
	Todos *core.TodoService
}

func New(config Config) (*Tudu, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrStorageRequired
	}

	// Set Defaults

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = core.NewBcrypt()
	}

	signer := core.NewTokenSigner(config.Secret)

	return &Tudu{
		Auth:  core.NewAuthService(config.Database, passwordHasher, signer),
		Todos: core.NewTodoService(config.Database),
	}, nil
}

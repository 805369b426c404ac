package core

type UserStorage interface {
	CreateUser(u *User) error

	// Query methods
	GetUserByID(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)

	// Token sequence mutations. Each is a single atomic write against the
	// user record.
	AppendToken(userID string, t SessionToken) error
	RemoveToken(userID, token string) error
}

type TodoStorage interface {
	CreateTodo(t *Todo) error

	ListTodosByOwner(ownerID string) ([]*Todo, error)

	// Owner-scoped lookups match on (id, ownerID). A todo owned by someone
	// else yields ErrTodoNotFound, indistinguishable from absence.
	GetTodoForOwner(id, ownerID string) (*Todo, error)
	UpdateTodoForOwner(id, ownerID string, patch TodoPatch) (*Todo, error)
	DeleteTodoForOwner(id, ownerID string) (*Todo, error)
}

type StorageAdapter interface {
	UserStorage
	TodoStorage

	// ValidID reports whether id is in the store's native id encoding.
	// Malformed ids are treated as not-found by callers.
	ValidID(id string) bool
}

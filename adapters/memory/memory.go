// Package memory implements the storage ports over in-process maps. It
// backs the test suites and the "memory" store mode; nothing survives a
// restart.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchant/tudu"
)

type Adapter struct {
	mu    sync.RWMutex
	users map[string]*tudu.User
	todos map[string]*tudu.Todo
}

var _ tudu.StorageAdapter = (*Adapter)(nil)

func New() *Adapter {
	return &Adapter{
		users: make(map[string]*tudu.User),
		todos: make(map[string]*tudu.Todo),
	}
}

func (a *Adapter) ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// UserStorage

func (a *Adapter) CreateUser(u *tudu.User) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.users {
		if existing.Email == u.Email {
			return tudu.ErrEmailTaken
		}
	}

	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Tokens == nil {
		u.Tokens = []tudu.SessionToken{}
	}

	a.users[u.ID] = copyUser(u)
	return nil
}

func (a *Adapter) GetUserByID(id string) (*tudu.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	u, ok := a.users[id]
	if !ok {
		return nil, tudu.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (a *Adapter) GetUserByEmail(email string) (*tudu.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, u := range a.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, tudu.ErrUserNotFound
}

func (a *Adapter) AppendToken(userID string, t tudu.SessionToken) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[userID]
	if !ok {
		return tudu.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, t)
	u.UpdatedAt = time.Now()
	return nil
}

func (a *Adapter) RemoveToken(userID, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[userID]
	if !ok {
		return tudu.ErrUserNotFound
	}

	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	u.UpdatedAt = time.Now()
	return nil
}

// TodoStorage

func (a *Adapter) CreateTodo(t *tudu.Todo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()

	a.todos[t.ID] = copyTodo(t)
	return nil
}

func (a *Adapter) ListTodosByOwner(ownerID string) ([]*tudu.Todo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := []*tudu.Todo{}
	for _, t := range a.todos {
		if t.OwnerID == ownerID {
			out = append(out, copyTodo(t))
		}
	}
	// map iteration order is random; keep output stable for callers
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (a *Adapter) GetTodoForOwner(id, ownerID string) (*tudu.Todo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	t, ok := a.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, tudu.ErrTodoNotFound
	}
	return copyTodo(t), nil
}

func (a *Adapter) UpdateTodoForOwner(id, ownerID string, patch tudu.TodoPatch) (*tudu.Todo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, tudu.ErrTodoNotFound
	}

	if patch.Text != nil {
		t.Text = *patch.Text
	}
	t.Completed = patch.Completed
	t.CompletedAt = patch.CompletedAt

	return copyTodo(t), nil
}

func (a *Adapter) DeleteTodoForOwner(id, ownerID string) (*tudu.Todo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, tudu.ErrTodoNotFound
	}
	delete(a.todos, id)
	return t, nil
}

func copyUser(u *tudu.User) *tudu.User {
	out := *u
	out.Tokens = append([]tudu.SessionToken{}, u.Tokens...)
	return &out
}

func copyTodo(t *tudu.Todo) *tudu.Todo {
	out := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	return &out
}

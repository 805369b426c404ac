package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeStorage is a test-only StorageAdapter. It stores records in maps and
// exposes error fields for behavior injection.
type fakeStorage struct {
	mu    sync.RWMutex
	users map[string]*User
	todos map[string]*Todo

	createUserErr error
	getUserErr    error
	appendErr     error
	removeErr     error
}

var _ StorageAdapter = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users: make(map[string]*User),
		todos: make(map[string]*Todo),
	}
}

func (f *fakeStorage) ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func (f *fakeStorage) CreateUser(u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStorage) GetUserByID(id string) (*User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	cp.Tokens = append([]SessionToken{}, u.Tokens...)
	return &cp, nil
}

func (f *fakeStorage) GetUserByEmail(email string) (*User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			cp.Tokens = append([]SessionToken{}, u.Tokens...)
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStorage) AppendToken(userID string, t SessionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, t)
	return nil
}

func (f *fakeStorage) RemoveToken(userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

func (f *fakeStorage) CreateTodo(t *Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	cp := *t
	f.todos[t.ID] = &cp
	return nil
}

func (f *fakeStorage) ListTodosByOwner(ownerID string) ([]*Todo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []*Todo{}
	for _, t := range f.todos {
		if t.OwnerID == ownerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStorage) GetTodoForOwner(id, ownerID string) (*Todo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrTodoNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStorage) UpdateTodoForOwner(id, ownerID string, patch TodoPatch) (*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrTodoNotFound
	}
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	t.Completed = patch.Completed
	t.CompletedAt = patch.CompletedAt
	cp := *t
	return &cp, nil
}

func (f *fakeStorage) DeleteTodoForOwner(id, ownerID string) (*Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrTodoNotFound
	}
	delete(f.todos, id)
	return t, nil
}

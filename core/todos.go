package core

import (
	"fmt"
	"strings"
	"time"
)

// TodoService owns todo CRUD. Every operation is scoped to the owner
// resolved by the auth middleware; there is no way to reach another user's
// records through it.
type TodoService struct {
	db StorageAdapter
}

func NewTodoService(db StorageAdapter) *TodoService {
	return &TodoService{db: db}
}

// UpdateTodoInput is the allow-listed patch accepted from clients. Unknown
// body fields are dropped during decoding and never reach the store.
type UpdateTodoInput struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// TodoPatch is the fully derived patch handed to storage. Completed and
// CompletedAt are always written together; Text only when non-nil.
type TodoPatch struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}

func (s *TodoService) Create(ownerID, text string) (*Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	todo := &Todo{
		Text:    text,
		OwnerID: ownerID,
	}

	if err := s.db.CreateTodo(todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

func (s *TodoService) List(ownerID string) ([]*Todo, error) {
	todos, err := s.db.ListTodosByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) Get(id, ownerID string) (*Todo, error) {
	if !s.db.ValidID(id) {
		return nil, ErrTodoNotFound
	}
	return s.db.GetTodoForOwner(id, ownerID)
}

// Update applies an allow-listed patch. CompletedAt is derived here on
// every update, not only when completed is present: completed=true stamps
// the current time, anything else forces completed=false, completedAt=nil.
func (s *TodoService) Update(id, ownerID string, input UpdateTodoInput) (*Todo, error) {
	if !s.db.ValidID(id) {
		return nil, ErrTodoNotFound
	}

	patch := TodoPatch{Text: input.Text}
	if input.Completed != nil && *input.Completed {
		now := time.Now().UnixMilli()
		patch.Completed = true
		patch.CompletedAt = &now
	}

	return s.db.UpdateTodoForOwner(id, ownerID, patch)
}

func (s *TodoService) Delete(id, ownerID string) (*Todo, error) {
	if !s.db.ValidID(id) {
		return nil, ErrTodoNotFound
	}
	return s.db.DeleteTodoForOwner(id, ownerID)
}

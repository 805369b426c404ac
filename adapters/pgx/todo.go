package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rmarchant/tudu"
)

func (a *Adapter) CreateTodo(todo *tudu.Todo) error {
	ctx := context.Background()

	query := `INSERT INTO todos (text, owner_id) VALUES ($1, $2) RETURNING id, completed, created_at`
	err := a.pool.QueryRow(ctx, query, todo.Text, todo.OwnerID).Scan(&todo.ID, &todo.Completed, &todo.CreatedAt)
	if err != nil {
		return err
	}
	return nil
}

func (a *Adapter) ListTodosByOwner(ownerID string) ([]*tudu.Todo, error) {
	ctx := context.Background()
	q := `SELECT id, text, completed, completed_at, owner_id, created_at FROM todos WHERE owner_id = $1 ORDER BY created_at`

	rows, err := a.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []*tudu.Todo{}
	for rows.Next() {
		todo := &tudu.Todo{}
		if err := rows.Scan(&todo.ID, &todo.Text, &todo.Completed, &todo.CompletedAt, &todo.OwnerID, &todo.CreatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (a *Adapter) GetTodoForOwner(id, ownerID string) (*tudu.Todo, error) {
	ctx := context.Background()
	q := `SELECT id, text, completed, completed_at, owner_id, created_at FROM todos WHERE id = $1 AND owner_id = $2`

	todo := &tudu.Todo{}
	err := a.pool.QueryRow(ctx, q, id, ownerID).Scan(&todo.ID, &todo.Text, &todo.Completed, &todo.CompletedAt, &todo.OwnerID, &todo.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tudu.ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (a *Adapter) UpdateTodoForOwner(id, ownerID string, patch tudu.TodoPatch) (*tudu.Todo, error) {
	ctx := context.Background()
	q := `UPDATE todos
	      SET completed = $1, completed_at = $2, text = COALESCE($3, text)
	      WHERE id = $4 AND owner_id = $5
	      RETURNING id, text, completed, completed_at, owner_id, created_at`

	todo := &tudu.Todo{}
	err := a.pool.QueryRow(ctx, q, patch.Completed, patch.CompletedAt, patch.Text, id, ownerID).
		Scan(&todo.ID, &todo.Text, &todo.Completed, &todo.CompletedAt, &todo.OwnerID, &todo.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tudu.ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

func (a *Adapter) DeleteTodoForOwner(id, ownerID string) (*tudu.Todo, error) {
	ctx := context.Background()
	q := `DELETE FROM todos WHERE id = $1 AND owner_id = $2
	      RETURNING id, text, completed, completed_at, owner_id, created_at`

	todo := &tudu.Todo{}
	err := a.pool.QueryRow(ctx, q, id, ownerID).Scan(&todo.ID, &todo.Text, &todo.Completed, &todo.CompletedAt, &todo.OwnerID, &todo.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tudu.ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

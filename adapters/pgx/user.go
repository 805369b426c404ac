package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rmarchant/tudu"
)

const uniqueViolation = "23505"

func (a *Adapter) CreateUser(user *tudu.User) error {
	ctx := context.Background()

	query := `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	var id string
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query, user.Email, user.PasswordHash).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return tudu.ErrEmailTaken
		}
		return err
	}

	user.ID = id
	user.Tokens = []tudu.SessionToken{}
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetUserByID(id string) (*tudu.User, error) {
	ctx := context.Background()
	q := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`

	user := &tudu.User{}
	err := a.pool.QueryRow(ctx, q, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tudu.ErrUserNotFound
		}
		return nil, err
	}

	tokens, err := a.loadTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Tokens = tokens
	return user, nil
}

func (a *Adapter) GetUserByEmail(email string) (*tudu.User, error) {
	ctx := context.Background()
	q := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`

	user := &tudu.User{}
	err := a.pool.QueryRow(ctx, q, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tudu.ErrUserNotFound
		}
		return nil, err
	}

	tokens, err := a.loadTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Tokens = tokens
	return user, nil
}

func (a *Adapter) AppendToken(userID string, t tudu.SessionToken) error {
	ctx := context.Background()
	q := `INSERT INTO user_tokens (user_id, access, token) VALUES ($1, $2, $3)`

	_, err := a.pool.Exec(ctx, q, userID, t.Access, t.Token)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return tudu.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (a *Adapter) RemoveToken(userID, token string) error {
	ctx := context.Background()

	// Deleting an absent token is a no-op, keeping revocation idempotent.
	_, err := a.pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}

func (a *Adapter) loadTokens(ctx context.Context, userID string) ([]tudu.SessionToken, error) {
	rows, err := a.pool.Query(ctx, `SELECT access, token FROM user_tokens WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []tudu.SessionToken{}
	for rows.Next() {
		var t tudu.SessionToken
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

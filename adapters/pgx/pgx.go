// Package pgx implements the storage ports over PostgreSQL. The token
// sequence lives in a user_tokens table; see schema.sql.
package pgx

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmarchant/tudu"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ tudu.StorageAdapter = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{pool: pool}
}

func (a *Adapter) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

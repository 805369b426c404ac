// Package mongo implements the storage ports over a MongoDB database.
// Users carry their token sequence as an embedded array, so token append
// and revoke are single-document atomic writes.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rmarchant/tudu"
)

const opTimeout = 10 * time.Second

type Adapter struct {
	users *driver.Collection
	todos *driver.Collection
}

var _ tudu.StorageAdapter = (*Adapter)(nil)

// New wraps the given database and ensures the unique email index exists.
func New(db *driver.Database) (*Adapter, error) {
	a := &Adapter{
		users: db.Collection("users"),
		todos: db.Collection("todos"),
	}

	ctx, cancel := opCtx()
	defer cancel()

	_, err := a.users.Indexes().CreateOne(ctx, driver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Connect dials the given URI and returns an adapter over the named
// database, plus a close function for shutdown.
func Connect(uri, database string) (*Adapter, func(), error) {
	ctx, cancel := opCtx()
	defer cancel()

	client, err := driver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := opCtx()
		defer cancel()
		_ = client.Disconnect(ctx)
	}

	adapter, err := New(client.Database(database))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return adapter, cleanup, nil
}

func (a *Adapter) ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

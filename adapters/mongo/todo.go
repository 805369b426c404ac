package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rmarchant/tudu"
)

type todoDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Text        string             `bson:"text"`
	Completed   bool               `bson:"completed"`
	CompletedAt *int64             `bson:"completedAt"`
	OwnerID     primitive.ObjectID `bson:"ownerId"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *todoDoc) toTodo() *tudu.Todo {
	return &tudu.Todo{
		ID:          d.ID.Hex(),
		Text:        d.Text,
		Completed:   d.Completed,
		CompletedAt: d.CompletedAt,
		OwnerID:     d.OwnerID.Hex(),
		CreatedAt:   d.CreatedAt,
	}
}

func (a *Adapter) CreateTodo(todo *tudu.Todo) error {
	owner, err := primitive.ObjectIDFromHex(todo.OwnerID)
	if err != nil {
		return tudu.ErrUserNotFound
	}

	ctx, cancel := opCtx()
	defer cancel()

	now := time.Now()
	doc := todoDoc{
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		OwnerID:     owner,
		CreatedAt:   now,
	}

	res, err := a.todos.InsertOne(ctx, doc)
	if err != nil {
		return err
	}

	todo.ID = res.InsertedID.(primitive.ObjectID).Hex()
	todo.CreatedAt = now
	return nil
}

func (a *Adapter) ListTodosByOwner(ownerID string) ([]*tudu.Todo, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, tudu.ErrUserNotFound
	}

	ctx, cancel := opCtx()
	defer cancel()

	cursor, err := a.todos.Find(ctx, bson.M{"ownerId": owner})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*tudu.Todo{}
	for cursor.Next(ctx) {
		var doc todoDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toTodo())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) GetTodoForOwner(id, ownerID string) (*tudu.Todo, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opCtx()
	defer cancel()

	var doc todoDoc
	err = a.todos.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return nil, tudu.ErrTodoNotFound
		}
		return nil, err
	}
	return doc.toTodo(), nil
}

func (a *Adapter) UpdateTodoForOwner(id, ownerID string, patch tudu.TodoPatch) (*tudu.Todo, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"completed":   patch.Completed,
		"completedAt": patch.CompletedAt,
	}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}

	ctx, cancel := opCtx()
	defer cancel()

	var doc todoDoc
	err = a.todos.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return nil, tudu.ErrTodoNotFound
		}
		return nil, err
	}
	return doc.toTodo(), nil
}

func (a *Adapter) DeleteTodoForOwner(id, ownerID string) (*tudu.Todo, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opCtx()
	defer cancel()

	var doc todoDoc
	err = a.todos.FindOneAndDelete(ctx, filter).Decode(&doc)
	if err != nil {
		if err == driver.ErrNoDocuments {
			return nil, tudu.ErrTodoNotFound
		}
		return nil, err
	}
	return doc.toTodo(), nil
}

// ownedFilter builds the (_id, ownerId) filter every owner-scoped operation
// matches on, so a foreign todo behaves exactly like a missing one.
func ownedFilter(id, ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, tudu.ErrTodoNotFound
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, tudu.ErrTodoNotFound
	}
	return bson.M{"_id": oid, "ownerId": owner}, nil
}
